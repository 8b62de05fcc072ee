// Package forms validates submitted data for every mutation and carries the
// labels, help texts and errors the templates render next to each input.
package forms

import (
	"slices"

	"github.com/samber/lo"
)

// NonFieldErrors holds errors that belong to the form as a whole
const NonFieldErrors = "__all__"

// Field is everything a template needs to render one input
type Field struct {
	Name     string
	Label    string
	HelpText string
	Value    string
	Errors   []string
	Required bool
}

// Errors maps a form field name to its error messages
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Get(field string) []string {
	return e[field]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// Names lists the fields with errors in a stable order
func (e Errors) Names() []string {
	names := lo.Keys(e)
	slices.Sort(names)
	return names
}

// NonField returns the errors not tied to any input
func (e Errors) NonField() []string {
	return e[NonFieldErrors]
}

// Choice is one option of a select input
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// Meta is the label and help text of a field
type Meta struct {
	Label    string
	HelpText string
}

func field(name string, meta Meta, value string, errs Errors, required bool) Field {
	return Field{
		Name:     name,
		Label:    meta.Label,
		HelpText: meta.HelpText,
		Value:    value,
		Errors:   errs.Get(name),
		Required: required,
	}
}
