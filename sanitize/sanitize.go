// Package sanitize strips unsafe markup from user-supplied post fields before they are stored.
package sanitize

import (
	"fmt"
	"restblog/storage/models"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	FieldTitle = "title"
	FieldImage = "image"
	FieldBody  = "body"
)

var DefaultFields = []string{FieldBody}

// Policy cleans the configured subset of post fields. Fields outside the set are stored as submitted.
type Policy struct {
	fields map[string]bool
	html   *bluemonday.Policy
}

func NewPolicy(fields []string) (*Policy, error) {
	p := &Policy{
		fields: make(map[string]bool, len(fields)),
		html:   bluemonday.UGCPolicy(),
	}
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		switch f {
		case FieldTitle, FieldImage, FieldBody:
			p.fields[f] = true
		default:
			return nil, fmt.Errorf("unknown sanitize field %q", f)
		}
	}
	return p, nil
}

func (p *Policy) Sanitizes(field string) bool {
	return p.fields[field]
}

func (p *Policy) Sanitize(s string) string {
	return p.html.Sanitize(s)
}

func (p *Policy) Apply(fields models.PostFields) models.PostFields {
	if p.fields[FieldTitle] {
		fields.Title = p.Sanitize(fields.Title)
	}
	if p.fields[FieldImage] {
		fields.Image = p.Sanitize(fields.Image)
	}
	if p.fields[FieldBody] {
		fields.Body = p.Sanitize(fields.Body)
	}
	return fields
}
