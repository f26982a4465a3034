package client

import (
	"encoding/json"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Content is one item of a remote tool result: Text, Image or Resource
type Content interface {
	content()
}

// Text is text content
type Text struct {
	Text string `json:"text"`
}

// Image is binary image or audio content
type Image struct {
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data"`
}

// Resource is an embedded resource or resource link
type Resource struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mime_type,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     []byte `json:"blob,omitempty"`
}

// Result is the result of calling a remote tool
type Result struct {
	Content []Content
	IsError bool
}

var _ Content = Text{}
var _ Content = Image{}
var _ Content = Resource{}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Text returns the text of all text content, and the text of embedded
// text resources, joined by newlines
func (r *Result) Text() string {
	var parts []string
	for _, c := range r.Content {
		switch c := c.(type) {
		case Text:
			parts = append(parts, c.Text)
		case Resource:
			if c.Text != "" {
				parts = append(parts, c.Text)
			}
		case Image:
			// Not text
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Value returns the result as a value: a string when all content is text,
// the decoded value when that text is a JSON object, or otherwise the
// content items
func (r *Result) Value() any {
	for _, c := range r.Content {
		if _, ok := c.(Text); !ok {
			return r.Content
		}
	}
	text := r.Text()
	if strings.HasPrefix(text, "{") {
		var v map[string]any
		if err := json.Unmarshal([]byte(text), &v); err == nil {
			return v
		}
	}
	return text
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (Text) content()     {}
func (Image) content()    {}
func (Resource) content() {}
