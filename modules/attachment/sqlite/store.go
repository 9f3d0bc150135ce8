package sqlite

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hexastack/slackbridge/internal/attachment"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// blobStore implements attachment.Store backed by SQLite.
type blobStore struct {
	db          *sql.DB
	client      *http.Client
	maxFileSize int64
	logger      *slog.Logger

	mu        sync.RWMutex
	authorize func(*http.Request)
}

// SetAuthorizer installs a hook that decorates outgoing download requests,
// typically adding platform credentials. Channels call this once their own
// credentials are resolved, and again after a credential rotation.
func (s *blobStore) SetAuthorizer(fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorize = fn
}

// FetchAndStore implements attachment.Store.
func (s *blobStore) FetchAndStore(ctx context.Context, url, name string) (*attachment.Ref, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("attachment: build request: %w", err)
	}

	s.mu.RLock()
	if s.authorize != nil {
		s.authorize(req)
	}
	s.mu.RUnlock()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attachment: fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	limit := s.maxFileSize
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("attachment: read body: %w", err)
	}
	if n > limit {
		return nil, fmt.Errorf("attachment: file exceeds %d byte limit", limit)
	}

	id, err := generateID()
	if err != nil {
		return nil, err
	}

	ref := &attachment.Ref{
		ID:        id,
		Name:      name,
		MIMEType:  resp.Header.Get("Content-Type"),
		Size:      n,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attachments (id, name, mime_type, size, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.Name, ref.MIMEType, ref.Size, buf.Bytes(), ref.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("attachment: store %s: %w", ref.ID, err)
	}

	s.logger.Debug("attachment stored",
		"id", ref.ID,
		"name", ref.Name,
		"size", ref.Size,
	)

	return ref, nil
}

// Open implements attachment.Store.
func (s *blobStore) Open(ctx context.Context, id string) (io.ReadCloser, *attachment.Ref, error) {
	var (
		ref     attachment.Ref
		content []byte
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, mime_type, size, content, created_at FROM attachments WHERE id = ?`, id,
	).Scan(&ref.ID, &ref.Name, &ref.MIMEType, &ref.Size, &content, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, attachment.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("attachment: open %s: %w", id, err)
	}

	if t, perr := time.Parse(timeLayout, created); perr == nil {
		ref.CreatedAt = t
	}

	return io.NopCloser(bytes.NewReader(content)), &ref, nil
}

// Delete implements attachment.Store.
func (s *blobStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("attachment: delete %s: %w", id, err)
	}
	return nil
}

// Purge implements attachment.Store.
func (s *blobStore) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("attachment: purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("attachment: purge count: %w", err)
	}
	return n, nil
}

// generateID returns a 16-byte random hex id.
func generateID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("attachment: generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
