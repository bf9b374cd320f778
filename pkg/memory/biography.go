package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// BiographyRoot is the path label of the biography's root node.
const BiographyRoot = "biography"

// Node is one node of the biography tree: a Mapping, Sequence, Scalar or Null.
type Node interface {
	json.Marshaler
	node()
}

// Field is one key of a Mapping.
type Field struct {
	Key   string
	Value Node
}

// Mapping is an object whose keys keep document order.
type Mapping []Field

// Sequence is an ordered list.
type Sequence []Node

// ScalarKind distinguishes scalar leaves.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBool
)

// Scalar is a string, number or boolean leaf. Text holds the string itself,
// the number as written in the document, or "true"/"false".
type Scalar struct {
	Kind ScalarKind
	Text string
}

// Null is an explicit null leaf.
type Null struct{}

func (Mapping) node()  {}
func (Sequence) node() {}
func (Scalar) node()   {}
func (Null) node()     {}

// String returns a string scalar.
func String(s string) Scalar { return Scalar{Kind: ScalarString, Text: s} }

// Number returns a number scalar with its literal text.
func Number(text string) Scalar { return Scalar{Kind: ScalarNumber, Text: text} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar {
	if b {
		return Scalar{Kind: ScalarBool, Text: "true"}
	}
	return Scalar{Kind: ScalarBool, Text: "false"}
}

// ParseBiography decodes a JSON document into a tree. Object key order is
// kept; a repeated key keeps its first position and takes the last value.
func ParseBiography(data []byte) (Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) Node {
	switch {
	case r.IsObject():
		m := Mapping{}
		index := map[string]int{}
		r.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if i, ok := index[k]; ok {
				m[i].Value = fromResult(value)
				return true
			}
			index[k] = len(m)
			m = append(m, Field{Key: k, Value: fromResult(value)})
			return true
		})
		return m
	case r.IsArray():
		s := Sequence{}
		r.ForEach(func(_, value gjson.Result) bool {
			s = append(s, fromResult(value))
			return true
		})
		return s
	}

	switch r.Type {
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		return Number(r.Raw)
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	default:
		return Null{}
	}
}

// FlattenBiography walks the tree depth first and returns one sentence per
// non-empty leaf or non-empty sequence:
//
//	The value for 'biography.name' is 'Aarush'.
//	The value for 'biography.hobbies' is 'chess, code'.
func FlattenBiography(root Node) []string {
	out := []string{}
	flatten(root, BiographyRoot, &out)
	return out
}

func flatten(n Node, path string, out *[]string) {
	switch v := n.(type) {
	case Mapping:
		for _, f := range v {
			flatten(f.Value, path+"."+f.Key, out)
		}
	case Sequence:
		if len(v) == 0 {
			return
		}
		parts := make([]string, len(v))
		for i, el := range v {
			parts[i] = stringifyNode(el)
		}
		*out = append(*out, valueSentence(path, strings.Join(parts, ", ")))
	case Scalar:
		if v.Text == "" {
			return
		}
		*out = append(*out, valueSentence(path, v.Text))
	case Null, nil:
	}
}

func valueSentence(path, value string) string {
	return "The value for '" + path + "' is '" + value + "'."
}

// stringifyNode renders a sequence element: scalars by their text, null as
// "null", nested containers as compact JSON.
func stringifyNode(n Node) string {
	switch v := n.(type) {
	case Scalar:
		return v.Text
	case Null, nil:
		return "null"
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func stringifyResult(r gjson.Result) string {
	return stringifyNode(fromResult(r))
}

func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(quote(f.Key))
		buf.WriteByte(':')
		data, err := marshalNode(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, el := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := marshalNode(el)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ScalarNumber:
		if !json.Valid([]byte(s.Text)) {
			return nil, errors.New("invalid number literal: " + s.Text)
		}
		return []byte(s.Text), nil
	case ScalarBool:
		return []byte(s.Text), nil
	default:
		return quote(s.Text), nil
	}
}

func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func marshalNode(n Node) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return n.MarshalJSON()
}

func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
