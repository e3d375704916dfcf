package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"pagesmith/internal/logging"
)

// Record maps a local image identity to its remote URL.
type Record struct {
	Identity   string    `json:"identity"`
	RemoteURL  string    `json:"remote_url"`
	UploadedAt time.Time `json:"uploaded_at"`
	SourceName string    `json:"source_name,omitempty"`
	StoredAs   string    `json:"stored_as,omitempty"`
}

// Store provides concurrency-safe access to the record file.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	mu      sync.RWMutex
	records []Record
	latest  map[string]int

	// offset is the number of bytes of the file already ingested.
	offset int64
	lineNo int
	// partial is set when the file does not end in a newline.
	partial bool
}

// Open loads the record file at path. A missing file yields an empty store;
// corrupt lines are skipped with a warning.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("records: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create records directory: %w", err)
	}
	s := &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "records"),
		lock:   flock.New(path + ".lock"),
		latest: make(map[string]int),
	}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the record file location.
func (s *Store) Path() string { return s.path }

// Lookup returns the most recent record for identity.
func (s *Store) Lookup(identity string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.latest[identity]
	if !ok {
		return Record{}, false
	}
	return s.records[idx], true
}

// List returns every record, newest first. Records with equal timestamps are
// ordered by reverse file position.
func (s *Store) List() []Record {
	s.mu.RLock()
	out := make([]Record, len(s.records))
	for i := range s.records {
		out[len(out)-1-i] = s.records[i]
	}
	s.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return out
}

// Count returns the number of records read or written, superseded ones included.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Refresh reloads the file from disk under a shared file lock.
func (s *Store) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		return fmt.Errorf("lock records: %w", err)
	}
	defer s.lock.Unlock() //nolint:errcheck

	s.reset()
	if err := s.ingestNew(); err != nil {
		return err
	}
	s.logger.Debug("loaded upload records",
		logging.Int("record_count", len(s.records)),
		logging.String(logging.FieldPath, s.path))
	return nil
}

// Append persists rec as one line and indexes it. Failures are returned as
// *WriteError carrying rec.RemoteURL.
func (s *Store) Append(rec Record) error {
	rec.Identity = strings.TrimSpace(rec.Identity)
	rec.RemoteURL = strings.TrimSpace(rec.RemoteURL)
	fail := func(err error) error {
		return &WriteError{Path: s.path, Identity: rec.Identity, URL: rec.RemoteURL, Err: err}
	}
	if rec.Identity == "" {
		return fail(errors.New("identity is empty"))
	}
	if rec.RemoteURL == "" {
		return fail(errors.New("remote url is empty"))
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fail(fmt.Errorf("marshal record: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fail(fmt.Errorf("lock records: %w", err))
	}
	defer s.lock.Unlock() //nolint:errcheck

	if err := s.ingestNew(); err != nil {
		return fail(err)
	}

	line := make([]byte, 0, len(payload)+2)
	if s.partial {
		line = append(line, '\n')
	}
	line = append(line, payload...)
	line = append(line, '\n')

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fail(fmt.Errorf("open records: %w", err))
	}
	if _, err := file.Write(line); err != nil {
		file.Close()
		return fail(fmt.Errorf("write record: %w", err))
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fail(fmt.Errorf("sync records: %w", err))
	}
	if err := file.Close(); err != nil {
		return fail(fmt.Errorf("close records: %w", err))
	}

	s.offset += int64(len(line))
	s.lineNo++
	s.partial = false
	s.index(rec)

	s.logger.Debug("upload record appended",
		logging.String(logging.FieldIdentity, rec.Identity),
		logging.String(logging.FieldURL, rec.RemoteURL))
	return nil
}

func (s *Store) reset() {
	s.records = nil
	s.latest = make(map[string]int)
	s.offset = 0
	s.lineNo = 0
	s.partial = false
}

func (s *Store) index(rec Record) {
	s.records = append(s.records, rec)
	s.latest[rec.Identity] = len(s.records) - 1
}

// ingestNew reads bytes appended since the last read. Callers hold s.mu and
// a file lock.
func (s *Store) ingestNew() error {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if s.offset > 0 {
				s.reset()
			}
			return nil
		}
		return fmt.Errorf("open records: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat records: %w", err)
	}
	if info.Size() < s.offset {
		// Replaced or truncated behind our back; start over.
		s.reset()
	}
	if _, err := file.Seek(s.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek records: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	for len(data) > 0 {
		line, rest, found := bytes.Cut(data, []byte{'\n'})
		data = rest
		s.offset += int64(len(line))
		if found {
			s.offset++
		}
		s.partial = !found
		s.lineNo++
		s.ingestLine(line)
	}
	return nil
}

func (s *Store) ingestLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil || rec.Identity == "" || rec.RemoteURL == "" {
		if err == nil {
			err = errors.New("identity or remote_url missing")
		}
		logging.WarnWithContext(s.logger, "skipping corrupt upload record", "record_corrupt",
			logging.String(logging.FieldPath, s.path),
			logging.Int("line", s.lineNo),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or delete the line; it is ignored"),
			logging.String(logging.FieldImpact, "the image may be uploaded again"))
		return
	}
	s.index(rec)
}
