// Package attachment defines the attachment store contract used by
// channels to turn transient, auth-walled platform file URLs into durable
// local references before an event reaches the bot pipeline.
package attachment

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// URIScheme prefixes durable attachment references (e.g. "attach://ab12cd").
const URIScheme = "attach://"

// ErrNotFound indicates no stored attachment exists for the given id.
var ErrNotFound = errors.New("attachment: not found")

// Ref is a durable reference to a stored attachment.
type Ref struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	MIMEType  string    `json:"mime_type,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// URI returns the durable attach:// reference for the stored attachment.
func (r *Ref) URI() string {
	return URIScheme + r.ID
}

// IsDurable reports whether the given URL is already a durable reference.
func IsDurable(url string) bool {
	return strings.HasPrefix(url, URIScheme)
}

// IDFromURI extracts the attachment id from an attach:// reference.
// Returns false when the URL does not carry the scheme.
func IDFromURI(url string) (string, bool) {
	if !IsDurable(url) {
		return "", false
	}
	return strings.TrimPrefix(url, URIScheme), true
}

// Store fetches remote files and keeps their binary content locally.
type Store interface {
	// FetchAndStore downloads the file at url and persists it under a new
	// unique id. The url may require platform authentication; channels
	// install their credentials via SetAuthorizer on the concrete store.
	FetchAndStore(ctx context.Context, url, name string) (*Ref, error)

	// Open returns the stored binary content and its metadata.
	// The caller must close the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *Ref, error)

	// Delete removes a stored attachment. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Purge removes attachments older than the given age and returns how
	// many were removed.
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}
