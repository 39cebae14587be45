package roast

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ErrInvalidDocument is returned by ParseDocument for input that is not a
// UTF-8 encoded JSON object.
var ErrInvalidDocument = errors.New("invalid roast document")

// Document is one parsed roast. It is read-only after ParseDocument.
type Document struct {
	name   string
	fields map[string]gjson.Result
}

// ParseDocument parses data as a roast document. name identifies the
// source (usually its path) and is carried into diagnostics.
func ParseDocument(name string, data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w %s: not UTF-8", ErrInvalidDocument, name)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w %s: malformed JSON", ErrInvalidDocument, name)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w %s: top-level value is not an object", ErrInvalidDocument, name)
	}
	return &Document{name: name, fields: root.Map()}, nil
}

// Name returns the source name given to ParseDocument.
func (d *Document) Name() string { return d.name }

// Lookup returns the top-level value stored under key. A key holding JSON
// null is reported as present.
func (d *Document) Lookup(key string) (gjson.Result, bool) {
	r, ok := d.fields[key]
	return r, ok
}

// Has reports whether key is present at the top level.
func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// number returns the numeric value stored under key.
func (d *Document) number(key string) (float64, error) {
	r, ok := d.fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s missing", ErrMalformed, key)
	}
	if r.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is not a number", ErrMalformed, key)
	}
	return r.Num, nil
}

// toFloat coerces a scalar JSON value to float64: numbers as-is, numeric
// strings parsed, booleans as 0/1.
func toFloat(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case gjson.True:
		return 1, true
	case gjson.False:
		return 0, true
	default:
		return 0, false
	}
}
