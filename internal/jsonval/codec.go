package jsonval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Parse decodes a JSON document into a Value, keeping object key order.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("jsonval: trailing data after document")
	}
	return v, nil
}

// MustParse is Parse for fixtures; it panics on malformed input.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("jsonval: object key %v is not a string", keyTok)
				}
				val, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			list := &List{}
			for dec.More() {
				val, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("jsonval: unexpected delimiter %v", t)
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	}
	return nil, fmt.Errorf("jsonval: unexpected token %v", tok)
}

// Encode renders v indented with two spaces, keys in insertion order.
// This is the master-file format: human-readable and diffable.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v, 0, false)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Canonical renders v compact with object keys sorted. Used as a
// last-resort content fingerprint, so equal documents must always
// serialize identically.
func Canonical(v Value) string {
	var buf bytes.Buffer
	writeValue(&buf, v, 0, true)
	return buf.String()
}

func writeValue(buf *bytes.Buffer, v Value, depth int, canonical bool) {
	switch t := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		writeString(buf, string(t))
	case Number:
		buf.WriteString(string(t))
	case Bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case *List:
		if t == nil || len(t.Items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteByte('[')
		for i, it := range t.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if !canonical {
				newlineIndent(buf, depth+1)
			}
			writeValue(buf, it, depth+1, canonical)
		}
		if !canonical {
			newlineIndent(buf, depth)
		}
		buf.WriteByte(']')
	case *Object:
		if t == nil || t.Len() == 0 {
			buf.WriteString("{}")
			return
		}
		keys := t.Keys()
		if canonical {
			keys = append([]string(nil), keys...)
			sort.Strings(keys)
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if !canonical {
				newlineIndent(buf, depth+1)
			}
			writeString(buf, k)
			buf.WriteByte(':')
			if !canonical {
				buf.WriteByte(' ')
			}
			writeValue(buf, t.Field(k), depth+1, canonical)
		}
		if !canonical {
			newlineIndent(buf, depth)
		}
		buf.WriteByte('}')
	}
}

func newlineIndent(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

func writeString(buf *bytes.Buffer, s string) {
	b, err := json.Marshal(s)
	if err != nil {
		// json.Marshal of a string cannot fail; keep the document valid anyway.
		buf.WriteString(`""`)
		return
	}
	buf.Write(b)
}
