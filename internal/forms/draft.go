// Package forms holds the staged input of one form: the fields typed so far,
// at most one selected file and, for gallery uploads, the media intent.
package forms

import (
	"maps"
	"sync"
)

// MediaType is the gallery upload intent.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// ParseMediaType returns the intent named by s, defaulting to photo.
func ParseMediaType(s string) MediaType {
	if MediaType(s) == MediaVideo {
		return MediaVideo
	}
	return MediaPhoto
}

// File is a staged upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Snapshot is a consistent copy of a draft taken at submission time.
type Snapshot struct {
	Fields map[string]string
	File   *File
	Media  MediaType
}

// Field returns the named value, or "" when it was never entered.
func (s Snapshot) Field(name string) string {
	return s.Fields[name]
}

// Draft is the mutable staging record of one view. It is safe for concurrent use.
type Draft struct {
	mu     sync.Mutex
	fields map[string]string
	file   *File
	media  MediaType
}

func NewDraft() *Draft {
	return &Draft{fields: map[string]string{}, media: MediaPhoto}
}

// SetField merges one value into the draft. No validation happens here.
func (d *Draft) SetField(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fields[name] = value
}

func (d *Draft) Field(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fields[name]
}

// SetFile replaces the selected file; nil clears it.
func (d *Draft) SetFile(f *File) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.file = f
}

func (d *Draft) File() *File {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file
}

// SetMedia switches the gallery intent. Changing variant discards the selected file.
func (d *Draft) SetMedia(m MediaType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m != d.media {
		d.file = nil
	}
	d.media = m
}

func (d *Draft) Media() MediaType {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.media
}

// Empty reports whether nothing has been staged.
func (d *Draft) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fields) == 0 && d.file == nil
}

// Reset clears fields, file and media intent together.
func (d *Draft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fields = map[string]string{}
	d.file = nil
	d.media = MediaPhoto
}

func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{Fields: maps.Clone(d.fields), File: d.file, Media: d.media}
}
