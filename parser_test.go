package jsonstream

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
)

// resultChecker feeds the same input to parsers in chunks of every size from
// 1 to 32 (and in one chunk) and checks that every pattern gets the expected
// values each time.  Single quotes in the input and the expected values are
// turned into double quotes.
type resultChecker struct {
	t      *testing.T
	input  []byte
	b      *Builder
	checks []*listenerCheck
}

type listenerCheck struct {
	pattern  string
	expected []string
	actual   []string
}

func newResultChecker(t *testing.T, input string) *resultChecker {
	return &resultChecker{t: t, input: []byte(normalizeQuotes(input)), b: NewBuilder()}
}

func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

func (r *resultChecker) expect(pattern string, values ...string) *resultChecker {
	r.t.Helper()
	c := &listenerCheck{pattern: pattern}
	for _, v := range values {
		c.expected = append(c.expected, normalizeQuotes(v))
	}
	err := r.b.Register(pattern, func(v *Value) error {
		c.actual = append(c.actual, v.Text())
		return nil
	})
	if err != nil {
		r.t.Fatalf("register %q: %s", pattern, err)
	}
	r.checks = append(r.checks, c)
	return r
}

func (r *resultChecker) check() {
	r.t.Helper()
	r.checkChunkSize(len(r.input))
	for i := 1; i <= min(32, len(r.input)); i++ {
		r.checkChunkSize(i)
	}
}

func (r *resultChecker) checkChunkSize(size int) {
	t := r.t
	t.Helper()
	for _, c := range r.checks {
		c.actual = nil
	}
	fed, released := 0, 0
	p, err := r.b.Build(WithChunkReleaser(func(chunk []byte) {
		released++
		scribble(chunk)
	}))
	if err != nil {
		t.Fatalf("build: %s", err)
	}
	defer p.Close()

	feed := func(chunk []byte) {
		fed++
		if err := p.Feed(chunk); err != nil {
			t.Fatalf("chunk size %d: %s", size, err)
		}
	}
	// Empty chunks between the others must not change anything.
	feed([]byte{})
	for _, chunk := range split(r.input, size) {
		feed(chunk)
		feed(nil)
	}
	if err := p.EndOfInput(); err != nil {
		t.Fatalf("chunk size %d: end of input: %s", size, err)
	}
	if released != fed {
		t.Errorf("chunk size %d: %d chunks fed, %d released", size, fed, released)
	}
	for _, c := range r.checks {
		if !slices.Equal(c.actual, c.expected) {
			t.Errorf("chunk size %d, pattern %q: expected %q, got %q", size, c.pattern, c.expected, c.actual)
		}
	}
}

// split copies input into chunks of at most size bytes.
func split(input []byte, size int) [][]byte {
	var chunks [][]byte
	for len(input) > 0 {
		n := min(size, len(input))
		chunks = append(chunks, bytes.Clone(input[:n]))
		input = input[n:]
	}
	return chunks
}

// scribble overwrites a released chunk so that any use of it after release
// shows in the results.
func scribble(chunk []byte) {
	for i := range chunk {
		chunk[i] = '#'
	}
}

func TestExampleUsage(t *testing.T) {
	var matches []string
	p, err := NewBuilder().
		OnValue("/name", func(v *Value) error {
			s, err := v.Unquote()
			matches = append(matches, "Hello "+s)
			return err
		}).
		OnValue("/pets/-/name", func(v *Value) error {
			s, err := v.Unquote()
			matches = append(matches, "I see you have a pet named "+s)
			return err
		}).
		OnValue("/blob", func(v *Value) error {
			matches = append(matches, "Here's a blob of JSON: "+string(v.Bytes()))
			return nil
		}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	json := []byte(normalizeQuotes(`{'name':'Jon','pets':[{'name':'Odie'},{'name':'Garfield'}],'blob':{'magicWord':'xyzzy'}}`))
	half := len(json) / 2

	if err := p.Feed(bytes.Clone(json[:half])); err != nil {
		t.Fatal(err)
	}
	expectStrings(t, matches, "Hello Jon", "I see you have a pet named Odie")
	matches = nil

	if err := p.Feed(bytes.Clone(json[half:])); err != nil {
		t.Fatal(err)
	}
	expectStrings(t, matches, "I see you have a pet named Garfield", `Here's a blob of JSON: {"magicWord":"xyzzy"}`)
}

func expectStrings(t *testing.T, got []string, expected ...string) {
	t.Helper()
	if !slices.Equal(got, expected) {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestJSONPointerExamples(t *testing.T) {
	json := `{
  'foo': ['bar', 'baz'],
  '': 0,
  'a/b': 1,
  'c%d': 2,
  'e^f': 3,
  'g|h': 4,
  'i\\j': 5,
  'k\'l': 6,
  ' ': 7,
  'm~n': 8
}`
	newResultChecker(t, json).
		expect("/foo", "['bar', 'baz']").
		expect("/", "0").
		expect("/a~1b", "1").
		expect("/c%d", "2").
		expect("/e^f", "3").
		expect("/g|h", "4").
		expect(`/i\j`, "5").
		expect(`/k"l`, "6").
		expect("/ ", "7").
		expect("/m~0n", "8").
		check()
}

func TestSurroundingWhitespaceOkay(t *testing.T) {
	newResultChecker(t, " \t{} \r\n").
		expect("", "{}").
		check()
}

func TestProcess(t *testing.T) {
	json := "{" +
		"'ignoreScalar':false," +
		"'ignoreArray':[[1,2,3],[{}]]," +
		"'ignoreObject':{'a':{},'b':[{}]}," +
		"'greeting':'hello'," +
		`'animal' : {'name' :  'fi\'do' ,'age':5},` +
		"'numbers' : [1, 'two' , 'π']," +
		"'magicWords': ['xyzzy' , 'abracadabra']," +
		"'null':null" +
		"}"

	newResultChecker(t, json).
		expect("/greeting", "'hello'").
		expect("/animal/name", `'fi\'do'`).
		expect("/animal/age", "5").
		expect("/numbers/-", "1", "'two'", "'π'").
		expect("/magicWords", "['xyzzy' , 'abracadabra']").
		expect("/null", "null").
		check()
}

func TestMatchElementsOfRootArray(t *testing.T) {
	newResultChecker(t, "[1,{'foo' : true},3]").
		expect("/-", "1", "{'foo' : true}", "3").
		check()
}

func TestMatchRoot(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"object", "{'greeting':'hello'}"},
		{"array", "[1, 2 ,3]"},
		{"true", "true"},
		{"false", "false"},
		{"null", "null"},
		{"string", "'hello'"},
		{"number", "-12.5e+3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newResultChecker(t, tt.input).
				expect("", tt.input).
				check()
		})
	}
}

func TestMatchEmptyName(t *testing.T) {
	newResultChecker(t, "{'':'hello'}").
		expect("/", "'hello'").
		check()
}

func TestContainerTypeMismatchIsNotError(t *testing.T) {
	newResultChecker(t, "{'greeting':'hello','colors':['red','green','blue']}").
		expect("/greeting/-").
		expect("/colors/foo").
		expect("/greeting/foo").
		check()
}

func TestHyphenIsValidObjectFieldName(t *testing.T) {
	newResultChecker(t, "{'foo':{'-':'bar','x':'baz'},'bar':['qux']}").
		expect("/foo/-", "'bar'").
		expect("/bar/-", "'qux'").
		check()
}

func TestCanReadMultipleDocuments(t *testing.T) {
	newResultChecker(t, "{'color':'red'}{'color':'green'}").
		expect("/color", "'red'", "'green'").
		check()
}

func TestRootMatchesEveryDocument(t *testing.T) {
	newResultChecker(t, "1 2\n'a'[3]{}null\ttrue 7").
		expect("", "1", "2", "'a'", "[3]", "{}", "null", "true", "7").
		check()
}

func TestCanDescendThroughArrayWildcard(t *testing.T) {
	newResultChecker(t, "{'colors':[{'r':255,'g':0,'b':0},{'r':0,'g':255,'b':0}]}").
		expect("/colors/-/g", "0", "255").
		check()
}

func TestNestedWildcards(t *testing.T) {
	newResultChecker(t, "{'m':[[1,2],[],[{'x':3}],4]}").
		expect("/m/-/-", "1", "2", "{'x':3}").
		expect("/m/-/-/x", "3").
		check()
}

func TestOneByteChunks(t *testing.T) {
	newResultChecker(t, `{"name":"Jon","pets":[{"name":"Odie"},{"name":"Garfield"}]}`).
		expect("/name", `"Jon"`).
		expect("/pets/-/name", `"Odie"`, `"Garfield"`).
		check()

	newResultChecker(t, `{"colors":["red","green","blue"]}`).
		expect("/colors/foo").
		check()
}

func TestNumbers(t *testing.T) {
	newResultChecker(t, "[0,-0,12,-3.25,1e5,1E+5,2.5e-3,-0.0e0]").
		expect("/-", "0", "-0", "12", "-3.25", "1e5", "1E+5", "2.5e-3", "-0.0e0").
		check()
}

func TestStrings(t *testing.T) {
	newResultChecker(t, `{"s":["", "\"", "\\", "\/", "\b\f\n\r\t", "é😀", "\u00e9\ud83d\ude00"]}`).
		expect("/s/-", `""`, `"\""`, `"\\"`, `"\/"`, `"\b\f\n\r\t"`, `"é😀"`, `"\u00e9\ud83d\ude00"`).
		check()
}

func TestEscapedKeys(t *testing.T) {
	newResultChecker(t, `{"a\/b":1,"a":2,"t~":3}`).
		expect("/a~1b", "1").
		expect("/a", "2").
		expect("/t~0", "3").
		check()
}

// A value that matches and also contains matches is reported after them.
func TestCaptureAndDescend(t *testing.T) {
	var log []string
	record := func(v *Value) error {
		log = append(log, v.Pattern()+"="+v.Text())
		return nil
	}
	input := `{"a":{"b":[1,{"c":2}]},"d":3}`
	for size := 1; size <= len(input); size++ {
		log = nil
		p, err := NewBuilder().
			OnValue("", record).
			OnValue("/a", record).
			OnValue("/a/b/-", record).
			OnValue("/a/b/-/c", record).
			Build()
		if err != nil {
			t.Fatal(err)
		}
		for _, chunk := range split([]byte(input), size) {
			if err := p.Feed(chunk); err != nil {
				t.Fatal(err)
			}
		}
		if err := p.EndOfInput(); err != nil {
			t.Fatal(err)
		}
		expectStrings(t, log,
			"/a/b/-=1",
			"/a/b/-/c=2",
			`/a/b/-={"c":2}`,
			`/a={"b":[1,{"c":2}]}`,
			`=`+input,
		)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, input := range []string{"", " ", "\n\t\r "} {
		called := false
		p, _ := NewBuilder().OnValue("", func(*Value) error {
			called = true
			return nil
		}).Build()
		if err := p.Feed([]byte(input)); err != nil {
			t.Fatalf("%q: %s", input, err)
		}
		if err := p.EndOfInput(); err != nil {
			t.Fatalf("%q: %s", input, err)
		}
		if called || p.Documents() != 0 {
			t.Errorf("%q: expected no document", input)
		}
	}
}

func TestDocumentsAndOffset(t *testing.T) {
	input := `1 [2] {"a":{}} "x" 5`
	p, _ := NewBuilder().Build()
	for _, chunk := range split([]byte(input), 3) {
		if err := p.Feed(chunk); err != nil {
			t.Fatal(err)
		}
	}
	if n := p.Documents(); n != 4 {
		t.Errorf("expected 4 documents before end of input, got %d", n)
	}
	if err := p.EndOfInput(); err != nil {
		t.Fatal(err)
	}
	if n := p.Documents(); n != 5 {
		t.Errorf("expected 5 documents, got %d", n)
	}
	if off := p.Offset(); off != int64(len(input)) {
		t.Errorf("expected offset %d, got %d", len(input), off)
	}
}

func TestDepth(t *testing.T) {
	p, _ := NewBuilder().Build()
	defer p.Close()
	if err := p.Feed([]byte(`{"a":[[`)); err != nil {
		t.Fatal(err)
	}
	if d := p.Depth(); d != 3 {
		t.Errorf("expected depth 3, got %d", d)
	}
}

func TestMaxDepth(t *testing.T) {
	b := NewBuilder()
	p, _ := b.Build(WithMaxDepth(2))
	if err := p.Feed([]byte(`[[1]] {"a":[]}`)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err := p.Feed([]byte(` [[[1]]]`))
	if !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
	p.Close()

	p, _ = b.Build()
	if err := p.Feed([]byte(strings.Repeat("[", 1000) + strings.Repeat("]", 1000))); err != nil {
		t.Fatalf("unexpected error without a limit: %s", err)
	}
}

// Only the bytes of pending matches are kept between feeds.
func TestRemainder(t *testing.T) {
	p, _ := NewBuilder().OnValue("/big", func(*Value) error { return nil }).Build()
	defer p.Close()

	feed := func(s string, retained int) {
		t.Helper()
		if err := p.Feed([]byte(s)); err != nil {
			t.Fatal(err)
		}
		if n := p.buf.Retained(); n != retained {
			t.Fatalf("after %q: expected %d retained bytes, got %d", s, retained, n)
		}
	}
	feed(`{"skip":"`+strings.Repeat("x", 10000), 0)
	feed(`","other":[1,2,3`, 0)
	feed(`],"bi`, len(`"bi`))
	feed(`g":"yy`, len(`"yy`))
	feed(`yy`, len(`"yyyy`))
	feed(`"}`, 0)
	feed(`{"big":[{"a":1}`, len(`[{"a":1}`))
	feed(`]}`, 0)
	feed(`{"big":123`, len(`123`))
	feed(`}`, 0)
}

func TestConcurrentParsers(t *testing.T) {
	b := NewBuilder()
	for _, pattern := range []string{"", "/id", "/tags/-", "/tags/-/x"} {
		b.Register(pattern, func(*Value) error { return nil })
	}
	const n = 8
	parsers := make([]*Parser, n)
	for i := range parsers {
		parsers[i], _ = b.Build()
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, p := range parsers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.Close()
			for j := 0; j < 100; j++ {
				doc := fmt.Sprintf(`{"id":%d,"tags":["a",{"x":%d}]}`, i, j)
				for _, chunk := range split([]byte(doc), i+1) {
					if err := p.Feed(chunk); err != nil {
						errs[i] = err
						return
					}
				}
			}
			errs[i] = p.EndOfInput()
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("parser %d: %s", i, err)
		}
		if d := parsers[i].Documents(); d != 100 {
			t.Errorf("parser %d: expected 100 documents, got %d", i, d)
		}
	}
}
