package jsonstream

// Package jsonstream extracts values from JSON input that arrives in chunks,
// without building the documents in memory.
//
// Callers register callbacks against patterns, which are JSON Pointers where
// the segment "-" stands for every element of an array:
//
//	b := jsonstream.NewBuilder().
//		OnValue("/name", func(v *jsonstream.Value) error {
//			name, err := v.Unquote()
//			...
//		}).
//		OnValue("/pets/-/kind", countKinds)
//	p, err := b.Build()
//
// and push the input to a Parser as it becomes available:
//
//	for chunk := range chunks {
//		if err := p.Feed(chunk); err != nil {
//			...
//		}
//	}
//	err = p.EndOfInput()
//
// A callback runs as soon as the last byte of its value has been fed.  The
// input may contain any number of top-level documents, each matched against
// the same patterns.  A Parser only keeps the bytes of the values it is going
// to hand to a callback, so its memory use does not depend on the size of the
// input.
//
// The sub-packages are:
//
// - pointer: parsing and escaping of patterns
// - pathtree: the trie that patterns are compiled into
// - token: JSON value kinds and string literals
//
// The CLI utility is in the directory cmd/jsub.  You can install it with:
//
//	go install github.com/surajatreya/jsonstream/cmd/jsub
