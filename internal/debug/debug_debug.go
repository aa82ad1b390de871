//go:build debug

// Package debug traces parser internals when built with -tags debug.
package debug

import "log"

func Printf(msg string, args ...any) {
	log.Printf("jsonstream: "+msg, args...)
}

const On = true
