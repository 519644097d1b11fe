package store

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/natefinch/atomic"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps every record as a text block in one flat file.
//
// Each mutation rewrites the whole file through a temp file and rename, so a
// crash leaves either the old or the new contents. Concurrent use within one
// process is serialized; FileStore does not lock against other processes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path must not be empty")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

// Write atomically replaces the file contents with data. Failures are reported
// as *fs.PathError for the store path.
func (f *FileStore) Write(data []byte) error {
	err := atomic.WriteFile(f.path, bytes.NewReader(data))
	if err == nil {
		return nil
	}
	if pathErr := (*fs.PathError)(nil); errors.As(err, &pathErr) {
		return err
	}
	return &fs.PathError{Op: "write", Path: f.path, Err: err}
}

// Read returns the file contents. A missing file reads as empty.
func (f *FileStore) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Save implements [Store].
func (f *FileStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].Username == rec.Username {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	return f.writeAll(records)
}

// Load implements [Store].
func (f *FileStore) Load(ctx context.Context, username string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if rec.Username == username {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// Delete implements [Store].
func (f *FileStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.Username != username {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return ErrNotFound
	}

	return f.writeAll(kept)
}

// List returns all records in file order.
func (f *FileStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.readAll()
}

func (f *FileStore) readAll() ([]Record, error) {
	data, err := f.Read()
	if err != nil {
		return nil, err
	}
	return UnmarshalBlocks(data)
}

func (f *FileStore) writeAll(records []Record) error {
	data, err := MarshalBlocks(records)
	if err != nil {
		return err
	}
	return f.Write(data)
}
