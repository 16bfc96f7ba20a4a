package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source is where document bytes come from: memory, a file or a URL.
type Source interface {
	// Name identifies the source; its extension drives format detection.
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

type bytesSource struct {
	name string
	data []byte
}

// Bytes wraps an in-memory document.
func Bytes(name string, data []byte) Source { return bytesSource{name: name, data: data} }

func (s bytesSource) Name() string { return s.name }

func (s bytesSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

type fileSource struct{ path string }

// File reads a document from the local file system.
func File(path string) Source { return fileSource{path: path} }

func (s fileSource) Name() string { return filepath.Base(s.path) }

func (s fileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.path)
}

type urlSource struct {
	raw    string
	client *http.Client
}

// URL fetches a document over HTTP. A nil client uses http.DefaultClient.
func URL(raw string, client *http.Client) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return urlSource{raw: raw, client: client}
}

func (s urlSource) Name() string {
	if u, err := url.Parse(s.raw); err == nil {
		return path.Base(u.Path)
	}
	return s.raw
}

func (s urlSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.raw, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.raw, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %w: %s", s.raw, ErrUnreachable, resp.Status)
	}
	return resp.Body, nil
}

var (
	ErrUnreachable = errors.New("source unreachable")
	ErrTooLarge    = errors.New("source too large")
)

// DefaultMaxSize bounds ReadAll when no explicit limit is given.
const DefaultMaxSize = 100 * 1024 * 1024

// ReadAll reads a whole source, failing with ErrTooLarge past max bytes.
func ReadAll(ctx context.Context, src Source, max int64) ([]byte, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrUnreachable)
	}
	if max <= 0 {
		max = DefaultMaxSize
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, max+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, src.Name(), max)
	}
	return data, nil
}

// Ext returns the lower-cased extension of the source name without the dot.
func Ext(src Source) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(src.Name())), ".")
}
