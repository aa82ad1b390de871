// Package token classifies raw JSON values and decodes JSON string literals.
package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind encodes the six JSON value types.  The kind of a value is known from
// its first byte, so a streaming parser knows it before the value is
// complete.
type Kind uint8

const (
	Invalid Kind = iota
	Null         // the type of JSON null
	Boolean      // a JSON boolean
	Number       // a JSON number
	String       // a JSON string
	Object       // a JSON object, introduced by '{'
	Array        // a JSON array, introduced by '['
)

var kindNames = [...]string{
	Invalid: "invalid",
	Null:    "null",
	Boolean: "boolean",
	Number:  "number",
	String:  "string",
	Object:  "object",
	Array:   "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsScalar reports whether k is one of the four scalar kinds.
func (k Kind) IsScalar() bool {
	return k >= Null && k <= String
}

// IsContainer reports whether k is Object or Array.
func (k Kind) IsContainer() bool {
	return k == Object || k == Array
}

// KindOf returns the kind of the value starting with b, or Invalid if no JSON
// value starts with b.
func KindOf(b byte) Kind {
	switch b {
	case '{':
		return Object
	case '[':
		return Array
	case '"':
		return String
	case 't', 'f':
		return Boolean
	case 'n':
		return Null
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return Number
	}
	return Invalid
}

// ErrNotString is returned by Unquote for input that is not a JSON string
// literal.
var ErrNotString = errors.New("not a JSON string literal")

// IsUnescaped reports whether the string literal lit contains no escape
// sequence, in which case its value is the bytes between the quotes.
func IsUnescaped(lit []byte) bool {
	return bytes.IndexByte(lit, '\\') < 0
}

// Unquote returns the value of the JSON string literal lit (including its
// quotes).
func Unquote(lit []byte) (string, error) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return "", ErrNotString
	}
	if IsUnescaped(lit) {
		return string(lit[1 : len(lit)-1]), nil
	}
	tok, err := parseJsonLiteralBytes(lit)
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", ErrNotString
	}
	return s, nil
}

// Quote returns s as a JSON string literal.
func Quote(s string) []byte {
	var b bytes.Buffer
	encoder := json.NewEncoder(&b)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		panic(err)
	}
	var encodedBytes = b.Bytes()
	// Remove the new line at the end
	return encodedBytes[:len(encodedBytes)-1]
}

func parseJsonLiteralBytes(b []byte) (json.Token, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	return dec.Token()
}
