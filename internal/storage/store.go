// Package storage keeps uploaded event images on a filesystem, one directory
// per event: <root>/events/<event id>/<filename>.
package storage

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const eventsDir = "events"

// StoredFile describes one file found under an event directory.
type StoredFile struct {
	EventID int64
	Name    string
	ModTime time.Time
}

// Store writes and removes image files and maps them to public URLs.
type Store struct {
	fs        afero.Fs
	urlPrefix string
}

// NewDisk returns a Store rooted at dir on the OS filesystem. Files are
// served under urlPrefix.
func NewDisk(dir, urlPrefix string) *Store {
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), urlPrefix)
}

// New wraps an arbitrary afero filesystem.
func New(fs afero.Fs, urlPrefix string) *Store {
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &Store{fs: fs, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// Save writes r to a new collision-free file in the event directory and
// returns its filename and public URL. A partially written file is removed.
func (s *Store) Save(eventID int64, originalName string, r io.Reader) (string, string, error) {
	dir := eventDir(eventID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "create event upload dir")
	}

	name := uuid.NewString() + "-" + SanitizeName(originalName)
	full := path.Join(dir, name)
	f, err := s.fs.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", "", errors.Wrap(err, "create image file")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(full)
		return "", "", errors.Wrap(err, "write image file")
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(full)
		return "", "", errors.Wrap(err, "close image file")
	}
	return name, s.URL(eventID, name), nil
}

// URL is the public path of a stored file.
func (s *Store) URL(eventID int64, filename string) string {
	return path.Join(s.urlPrefix, eventsDir, strconv.FormatInt(eventID, 10), filename)
}

// Remove deletes one file. A missing file is not an error.
func (s *Store) Remove(eventID int64, filename string) error {
	err := s.fs.Remove(path.Join(eventDir(eventID), filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove image file")
	}
	return nil
}

// RemoveEvent deletes the whole directory of an event.
func (s *Store) RemoveEvent(eventID int64) error {
	return errors.Wrap(s.fs.RemoveAll(eventDir(eventID)), "remove event upload dir")
}

// Files lists every file under the per-event directories. Entries whose
// directory name is not an event id are skipped.
func (s *Store) Files() ([]StoredFile, error) {
	dirs, err := afero.ReadDir(s.fs, eventsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read upload root")
	}
	var out []StoredFile
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(d.Name(), 10, 64)
		if err != nil {
			continue
		}
		files, err := afero.ReadDir(s.fs, path.Join(eventsDir, d.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read event dir %d", id)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			out = append(out, StoredFile{EventID: id, Name: f.Name(), ModTime: f.ModTime()})
		}
	}
	return out, nil
}

// SanitizeName lower-cases a client filename, turns whitespace runs into a
// single dash and drops characters outside [a-z0-9._-].
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsSpace(r):
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
		lastDash = false
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "image"
	}
	return out
}

func eventDir(eventID int64) string {
	return path.Join(eventsDir, strconv.FormatInt(eventID, 10))
}
