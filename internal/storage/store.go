package storage

import (
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrInvalidLocator = errors.New("invalid_locator")
	ErrNotExist       = errors.New("object_not_exist")
)

// Store is a locator-addressable blob store. Locators are slash-separated
// relative paths like "invoices/123/INV-001.pdf".
type Store interface {
	// Write stores content at locator, replacing any existing object.
	// The write is atomic: readers never see a partial object.
	Write(locator string, r io.Reader) error

	Delete(locator string) error
	Exists(locator string) bool

	// Rename moves an object to a new locator, replacing any existing
	// object there. Within a directory the move is atomic.
	Rename(oldLocator, newLocator string) error

	// Resolve maps a locator to an absolute filesystem path.
	Resolve(locator string) (string, error)
}

type localStore struct {
	root    string
	entropy io.Reader
}

// NewLocal creates a Store rooted at dir, creating it if needed.
func NewLocal(dir string) (Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &localStore{
		root:    abs,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

func (s *localStore) Write(locator string, r io.Reader) error {
	target, err := s.Resolve(locator)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	// Write to a scratch file in the final directory, then rename over
	// the destination so concurrent readers see old or new, never half.
	scratch := filepath.Join(filepath.Dir(target), "."+ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()+".tmp")
	f, err := os.OpenFile(scratch, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(scratch)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(scratch)
		return err
	}
	if err := os.Rename(scratch, target); err != nil {
		os.Remove(scratch)
		return err
	}
	return nil
}

func (s *localStore) Delete(locator string) error {
	target, err := s.Resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return err
	}
	return nil
}

func (s *localStore) Rename(oldLocator, newLocator string) error {
	src, err := s.Resolve(oldLocator)
	if err != nil {
		return err
	}
	dst, err := s.Resolve(newLocator)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return err
	}
	return nil
}

func (s *localStore) Exists(locator string) bool {
	target, err := s.Resolve(locator)
	if err != nil {
		return false
	}
	info, err := os.Stat(target)
	return err == nil && !info.IsDir()
}

func (s *localStore) Resolve(locator string) (string, error) {
	locator = strings.TrimPrefix(strings.TrimSpace(locator), "/")
	if locator == "" {
		return "", ErrInvalidLocator
	}

	target := filepath.Join(s.root, filepath.FromSlash(locator))
	// Reject traversal out of the root.
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidLocator
	}
	return target, nil
}
