package importer

import (
	"bytes"
	"encoding/json/jsontext"
	"errors"
	"fmt"
	"io"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Member is one name/value pair of a JSON object.
type Member struct {
	Name  string
	Value Value
}

// Value is a parsed JSON value. Only the fields matching Kind are set.
// Numbers keep their literal text in Text.
type Value struct {
	Kind    Kind
	Bool    bool
	Text    string
	Items   []Value
	Members []Member
}

// Get returns the member called name. When a name repeats, the last one
// wins, as in JavaScript.
func (v Value) Get(name string) (Value, bool) {
	if v.Kind != Object {
		return Value{}, false
	}
	for i := len(v.Members) - 1; i >= 0; i-- {
		if v.Members[i].Name == name {
			return v.Members[i].Value, true
		}
	}
	return Value{}, false
}

// Truthy mirrors JavaScript truthiness: null, false, "" and 0 are false,
// every array and object is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Bool:
		return v.Bool
	case String:
		return v.Text != ""
	case Number:
		return !isZeroNumber(v.Text)
	case Array, Object:
		return true
	default:
		return false
	}
}

func isZeroNumber(text string) bool {
	for _, r := range text {
		switch r {
		case '0', '.', '-', '+':
		case 'e', 'E':
			return true
		default:
			return false
		}
	}
	return true
}

var errTrailingData = errors.New("unexpected data after top-level value")

// ParseValue decodes a single JSON document into a Value, keeping object
// members in document order.
func ParseValue(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data),
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errTrailingData
		}
		return Value{}, err
	}
	return v, nil
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, err
	}

	switch tok.Kind() {
	case 'n':
		return Value{Kind: Null}, nil
	case 't', 'f':
		return Value{Kind: Bool, Bool: tok.Bool()}, nil
	case '0':
		return Value{Kind: Number, Text: tok.String()}, nil
	case '"':
		return Value{Kind: String, Text: tok.String()}, nil
	case '[':
		v := Value{Kind: Array, Items: []Value{}}
		for dec.PeekKind() != ']' {
			item, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			v.Items = append(v.Items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return v, nil
	case '{':
		v := Value{Kind: Object, Members: []Member{}}
		for dec.PeekKind() != '}' {
			tok, err := dec.ReadToken()
			if err != nil {
				return Value{}, err
			}
			// The token is only valid until the next read.
			name := tok.String()
			item, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			v.Members = append(v.Members, Member{Name: name, Value: item})
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return v, nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok.Kind())
	}
}
