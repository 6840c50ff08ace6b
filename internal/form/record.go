// Package form reads and writes the values of the rendered form controls of
// a document and exports the document with those values filled in.
package form

import (
	"math/rand/v2"
)

// FormValue is one form field record
type FormValue struct {
	ID    string `json:"id" yaml:"id"`
	Value any    `json:"value" yaml:"value"`
	Type  string `json:"type" yaml:"type"`
	Name  string `json:"name" yaml:"name"`
}

// NewFormValue creates a record
func NewFormValue(id string, value any, typ, name string) FormValue {
	return FormValue{ID: id, Value: value, Type: typ, Name: name}
}

const idCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MakeID returns a random alphanumeric string of the given length
func MakeID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = idCharacters[rand.IntN(len(idCharacters))]
	}
	return string(b)
}

// DemoValues returns the record set written when no values are supplied
func DemoValues() []FormValue {
	return []FormValue{
		{ID: "285R", Value: "Simon RACAUD"},
		{ID: "284R", Value: MakeID(13)},
		{ID: "286R", Value: MakeID(10)},
		{ID: "289R", Value: MakeID(5)},
		{ID: "298R", Value: MakeID(8)},
	}
}
