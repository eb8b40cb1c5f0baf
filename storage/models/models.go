package models

import (
	"time"
)

type Post struct {
	Id      string    `json:"id"`
	Title   string    `json:"title"`
	Image   string    `json:"image"`
	Body    string    `json:"body"`
	Created time.Time `json:"created"`
}

// PostFields holds the caller-supplied part of a Post.
type PostFields struct {
	Title string `json:"title"`
	Image string `json:"image"`
	Body  string `json:"body"`
}

func (p Post) Fields() PostFields {
	return PostFields{Title: p.Title, Image: p.Image, Body: p.Body}
}

func (p *Post) Apply(fields PostFields) {
	p.Title = fields.Title
	p.Image = fields.Image
	p.Body = fields.Body
}
