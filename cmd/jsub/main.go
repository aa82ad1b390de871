package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/golang/glog"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/surajatreya/jsonstream"
	"github.com/surajatreya/jsonstream/internal/config"
	"github.com/surajatreya/jsonstream/internal/feeder"
	"github.com/surajatreya/jsonstream/internal/format"
)

const usage = `Usage: jsub [options] [PATTERN...] [< input]

Read a stream of JSON documents and print every value matching one of the
patterns, one per line, as soon as it has been read.

A pattern is a JSON Pointer where the segment "-" matches every element of an
array.  The empty pattern "" matches whole documents and is the default.

  jsub /name /pets/-/name < people.json
  jsub -labels -indent 2 /users/-/address < users.json
  curl -sN https://example.com/events | jsub -raw /event/type

Options:
`

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see run).
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Set("logtostderr", "true")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	glog.Flush()
	os.Exit(code)
}

// errLimitReached stops the parser once every subscription with a limit has
// reached it.
var errLimitReached = errors.New("limit reached")

// run executes jsub and returns its exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		configFile string
		inputFile  string
		chunkSize  int
		bytesRate  float64
		maxDepth   int
		indent     int
		width      int
		labels     bool
		decode     bool
		colorMode  string
	)
	fs.StringVar(&configFile, "config", "", "YAML subscription file")
	fs.StringVar(&inputFile, "in", "", "read input from this file instead of stdin")
	fs.IntVar(&chunkSize, "chunk-size", 0, "bytes fed to the parser at a time (default 32768)")
	fs.Float64Var(&bytesRate, "rate", 0, "maximum input bytes per second, 0 for no limit")
	fs.IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth, 0 for no limit")
	fs.IntVar(&indent, "indent", 0, "indent containers by this many spaces; 0 prints values verbatim, -1 compacts them")
	fs.IntVar(&width, "width", 80, "line width under which indented arrays stay on one line")
	fs.BoolVar(&labels, "labels", false, "print the pattern (or label) of each match")
	fs.BoolVar(&decode, "raw", false, "print string values decoded")
	fs.StringVar(&colorMode, "color", "auto", "colorize output: auto, always, never")

	// glog registers -v and friends on the default flag set.
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		fs.Var(f.Value, f.Name, f.Usage)
	})

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	fail := func(msg string, args ...any) int {
		fmt.Fprintf(stderr, "jsub: "+msg+"\n", args...)
		return 1
	}

	// Settings from the command line override the file.
	cfg := &config.Config{}
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fail("%s", err)
		}
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["chunk-size"] || cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunkSize
	}
	if set["rate"] {
		cfg.Rate = bytesRate
	}
	if set["max-depth"] {
		cfg.MaxDepth = maxDepth
	}
	if set["indent"] {
		cfg.Output.Indent = indent
	}
	if set["width"] || cfg.Output.Width == 0 {
		cfg.Output.Width = width
	}
	if set["labels"] {
		cfg.Output.Labels = labels
	}
	if set["raw"] {
		cfg.Output.Decode = decode
	}
	cfg.Add(fs.Args()...)
	if len(cfg.Subscriptions) == 0 {
		cfg.Add("")
	}
	if err := cfg.Validate(); err != nil {
		return fail("%s", err)
	}

	// Handle color mode
	var colorizer *format.Colorizer
	file, isFile := stdout.(*os.File)
	isTerminal := isFile && isatty.IsTerminal(file.Fd())
	switch colorMode {
	case "always":
		colorizer = &format.DefaultColorizer
	case "never":
	case "auto":
		if isTerminal {
			colorizer = &format.DefaultColorizer
		}
	default:
		return fail("invalid -color value: %q (use auto, always, or never)", colorMode)
	}
	if colorizer != nil && isFile {
		stdout = colorable.NewColorable(file)
	}

	input := stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fail("%s", err)
		}
		defer f.Close()
		input = f
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	mp := &format.MatchPrinter{
		Writer:    out,
		Colorizer: colorizer,
		Indent:    cfg.Output.Indent,
		Width:     cfg.Output.Width,
		ShowLabel: cfg.Output.Labels,
		Decode:    cfg.Output.Decode,
	}
	// If we are writing to a terminal, flush after each match so user gets feedback early.
	if isTerminal {
		mp.Flusher = out
	}

	feed := feeder.New(cfg.ChunkSize, cfg.Rate)
	b := jsonstream.NewBuilder()
	lim := &limits{stoppable: true}
	for _, s := range cfg.Subscriptions {
		b.OnValue(s.Pattern, subscribe(s, mp, lim))
		if s.Limit > 0 {
			lim.pending++
		} else {
			lim.stoppable = false
		}
	}
	p, err := b.Build(
		jsonstream.WithChunkReleaser(feed.Release),
		jsonstream.WithMaxDepth(cfg.MaxDepth),
	)
	if err != nil {
		return fail("%s", err)
	}
	defer p.Close()
	glog.V(1).Infof("%d subscriptions, chunk size %d, rate %g", len(cfg.Subscriptions), feed.ChunkSize(), cfg.Rate)

	err = feed.Run(ctx, input, p)
	glog.V(1).Infof("read %d bytes in %d chunks, %d documents", feed.Bytes, feed.Chunks, p.Documents())
	switch {
	case err == nil, errors.Is(err, errLimitReached):
		return 0
	case errors.Is(err, syscall.EPIPE):
		// stdout is a pipe and something closed it (e.g. 'head' or 'less').
		// In this case we don't want to complain.
		return 0
	}
	out.Flush()
	return fail("%s", err)
}

// limits tracks the subscriptions that have not reached their limit.  Input
// is only abandoned when every subscription has one.
type limits struct {
	pending   int
	stoppable bool
}

// subscribe returns the callback printing the matches of s.
func subscribe(s config.Subscription, mp *format.MatchPrinter, lim *limits) jsonstream.Callback {
	name := s.Name()
	count := 0
	var scratch []byte
	return func(v *jsonstream.Value) error {
		if s.Limit > 0 && count >= s.Limit {
			return nil
		}
		count++
		glog.V(2).Infof("match %d for %q: %s, %d bytes", count, s.Pattern, v.Kind(), v.Len())
		scratch = v.AppendTo(scratch[:0])
		if err := mp.PrintMatch(name, v.Kind(), scratch); err != nil {
			return err
		}
		if s.Limit > 0 && count == s.Limit {
			lim.pending--
			if lim.stoppable && lim.pending == 0 {
				return errLimitReached
			}
		}
		return nil
	}
}
