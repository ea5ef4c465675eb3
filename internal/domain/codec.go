package domain

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
)

// Document is the wire shape of a board before shape validation. The three
// top-level members are pointers so that a missing or null member can be told
// apart from an empty one.
type Document struct {
	Columns   *[]Column            `json:"columns" validate:"required"`
	Followers *map[string]Follower `json:"followers" validate:"required"`
	Tags      *[]Tag               `json:"tags" validate:"required"`
}

// Board converts a validated document. Nil members become empty values.
func (d *Document) Board() *Board {
	b := &Board{Columns: []Column{}, Followers: map[string]Follower{}, Tags: []Tag{}}
	if d.Columns != nil {
		b.Columns = *d.Columns
	}
	if d.Followers != nil {
		b.Followers = *d.Followers
	}
	if d.Tags != nil {
		b.Tags = *d.Tags
	}
	return b
}

// DecodeDocument parses data into a Document without checking that the
// required members are present. Members of the wrong JSON type are errors.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serializes the board compactly.
func Encode(b *Board) ([]byte, error) {
	return json.Marshal(b, json.Deterministic(true))
}

// EncodeIndent serializes the board with two-space indentation.
func EncodeIndent(b *Board) ([]byte, error) {
	return json.Marshal(b, json.Deterministic(true), jsontext.WithIndent("  "))
}
