package jsonstream

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/surajatreya/jsonstream/token"
)

// A Value is a matched JSON value, as it appears in the input.  It is only
// valid during the callback it is passed to and reads as empty afterwards.
// Methods returning a []byte or a string return copies that can be kept.
type Value struct {
	raw     []byte
	kind    token.Kind
	pattern string
}

func (v *Value) Kind() token.Kind {
	return v.kind
}

// Pattern returns the pattern the value was registered with.
func (v *Value) Pattern() string {
	return v.pattern
}

// Len returns the length of the value in bytes.
func (v *Value) Len() int {
	return len(v.raw)
}

// Text returns the value as it appears in the input.  Strings keep their
// quotes and escapes, containers their inner whitespace.
func (v *Value) Text() string {
	return string(v.raw)
}

// Bytes returns a copy of the value as it appears in the input.
func (v *Value) Bytes() []byte {
	return bytes.Clone(v.raw)
}

// AppendTo appends the value as it appears in the input to dst.
func (v *Value) AppendTo(dst []byte) []byte {
	return append(dst, v.raw...)
}

// Unquote decodes a string value.
func (v *Value) Unquote() (string, error) {
	if v.kind != token.String {
		return "", fmt.Errorf("%w: value is %s", token.ErrNotString, v.kind)
	}
	return token.Unquote(v.raw)
}

// Get reads a part of the value with a gjson path, e.g. "friends.#.name".
func (v *Value) Get(path string) gjson.Result {
	return gjson.GetBytes(v.raw, path)
}

// Unmarshal decodes the value into x like json.Unmarshal.
func (v *Value) Unmarshal(x any) error {
	return json.Unmarshal(v.raw, x)
}

func (v *Value) invalidate() {
	v.raw = nil
}
