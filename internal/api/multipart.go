package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

type formFile struct {
	field    string
	filename string
	content  io.Reader
}

type formField struct {
	name  string
	value string
}

// Multipart is a request body sent as multipart/form-data. Passing one as
// the body of Client.Do switches the request away from JSON.
type Multipart struct {
	fields []formField
	files  []formFile
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field appends a text field
func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// File appends a file part. content is read when the request is sent.
func (m *Multipart) File(field, filename string, content io.Reader) *Multipart {
	m.files = append(m.files, formFile{field: field, filename: filename, content: content})
	return m
}

// Value returns the first value recorded for a text field
func (m *Multipart) Value(name string) (string, bool) {
	for _, f := range m.fields {
		if f.name == name {
			return f.value, true
		}
	}
	return "", false
}

// HasFile reports whether a file part exists for field
func (m *Multipart) HasFile(field string) bool {
	for _, f := range m.files {
		if f.field == field {
			return true
		}
	}
	return false
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	for _, f := range m.files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", f.field, err)
		}
		if _, err := io.Copy(part, f.content); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", f.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
