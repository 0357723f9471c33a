package gen

import (
	"fmt"
	"strings"
)

// Diagnostic codes.
const (
	CodeUnresolvedAlias   = "unresolved-alias"
	CodeNameCollision     = "name-collision"
	CodeHeuristicRelation = "heuristic-relation"
)

// Diagnostics holds the non-fatal findings of a pipeline run.
type Diagnostics struct {
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single finding.
type Diagnostic struct {
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Collection and Field locate the finding, if applicable.
	Collection string
	Field      string
	// Message is the human-readable description.
	Message string
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, collection, field, message string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Code:       code,
		Collection: collection,
		Field:      field,
		Message:    message,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, collection, field, message string) {
	d.Infos = append(d.Infos, Diagnostic{
		Code:       code,
		Collection: collection,
		Field:      field,
		Message:    message,
	})
}

// HasWarnings returns true if there are any warning diagnostics.
func (d *Diagnostics) HasWarnings() bool {
	return len(d.Warnings) > 0
}

// ByCode returns the warnings and infos with the given code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, list := range [][]Diagnostic{d.Warnings, d.Infos} {
		for _, x := range list {
			if x.Code == code {
				out = append(out, x)
			}
		}
	}
	return out
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	path := d.Collection
	if d.Field != "" {
		path += "." + d.Field
	}
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}
	if path != "" {
		return strings.TrimPrefix(path, ".") + ": " + msg
	}
	return msg
}
