package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Body is a request payload that knows its own wire encoding.
type Body interface {
	Encode() (io.Reader, string, error)
}

// JSONBody sends Value serialized as JSON.
type JSONBody struct {
	Value any
}

func (b JSONBody) Encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.Value)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// FormField is one text part of a multipart payload.
type FormField struct {
	Name  string
	Value string
}

// FilePart is the file carried by a multipart payload.
type FilePart struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// MultipartBody sends Fields in order followed by File when present.
type MultipartBody struct {
	Fields []FormField
	File   *FilePart
}

// Field returns the value of the named text part.
func (b MultipartBody) Field(name string) (string, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (b MultipartBody) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range b.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	if b.File != nil {
		if b.File.Field == "" {
			return nil, "", fmt.Errorf("file part %q has no field name", b.File.Name)
		}
		ct := b.File.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(b.File.Field), escapeQuotes(b.File.Name)))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(b.File.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
