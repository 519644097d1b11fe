package store

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "credentials.txt"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return fs
}

func TestFileStoreReadMissingIsEmpty(t *testing.T) {
	fs := newTestFileStore(t)
	data, err := fs.Read()
	if err != nil || len(data) != 0 {
		t.Fatalf("expected empty read, got %q %v", data, err)
	}
}

func TestFileStoreWriteRead(t *testing.T) {
	fs := newTestFileStore(t)
	if err := fs.Write([]byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.Write([]byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := fs.Read()
	if err != nil || string(data) != "second" {
		t.Fatalf("got %q %v", data, err)
	}
}

func TestFileStoreSaveLoadReplace(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	rec := sampleRecord()
	if err := fs.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	other := sampleRecord()
	other.Username = "bob"
	if err := fs.Save(ctx, other); err != nil {
		t.Fatalf("save other: %v", err)
	}

	rec.Hash = "ABCDEF"
	if err := fs.Save(ctx, rec); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := fs.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Hash != "ABCDEF" {
		t.Fatalf("expected replaced hash, got %q", got.Hash)
	}

	records, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].Username != "alice" || records[1].Username != "bob" {
		t.Fatalf("unexpected records %+v", records)
	}

	raw, err := os.ReadFile(fs.Path())
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if strings.Count(string(raw), "username: ") != 2 {
		t.Fatalf("unexpected file contents:\n%s", raw)
	}
}

func TestFileStoreDelete(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	if err := fs.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := fs.Delete(ctx, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := fs.Delete(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := fs.Load(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	fs := newTestFileStore(t)
	if err := fs.Write([]byte("garbage without fields\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fs.Load(context.Background(), "alice"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestFileStoreCanceledContext(t *testing.T) {
	fs := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fs.Save(ctx, sampleRecord()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFileStoreConcurrentSaves(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := sampleRecord()
			rec.Username = "user" + string(rune('a'+i))
			if err := fs.Save(ctx, rec); err != nil {
				t.Errorf("save %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	records, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 16 {
		t.Fatalf("expected 16 records, got %d", len(records))
	}
}

func TestNewFileStoreRejectsEmptyPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileStoreLongFieldRoundTrip(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	long := sampleRecord()
	long.Username = "mallory"
	long.Email = strings.Repeat("e", MaxFieldLength)
	if err := fs.Save(ctx, long); err != nil {
		t.Fatalf("save at the bound: %v", err)
	}
	if err := fs.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("save after long record: %v", err)
	}

	got, err := fs.Load(ctx, "mallory")
	if err != nil {
		t.Fatalf("load long record: %v", err)
	}
	if got != long {
		t.Fatal("long record did not round-trip")
	}
	if _, err := fs.Load(ctx, sampleRecord().Username); err != nil {
		t.Fatalf("load neighbour: %v", err)
	}
}

func TestFileStoreRejectsOversizedFieldWithoutWriting(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	if err := fs.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	before, err := fs.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	oversized := sampleRecord()
	oversized.Username = "mallory"
	oversized.Email = strings.Repeat("e", MaxFieldLength+1)
	if err := fs.Save(ctx, oversized); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	after, err := fs.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(after) != string(before) {
		t.Fatal("rejected save changed the file")
	}
	if _, err := fs.Load(ctx, sampleRecord().Username); err != nil {
		t.Fatalf("existing record unreadable after rejected save: %v", err)
	}
}

func TestFileStorePropagatesIOErrors(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(parent, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	fs, err := NewFileStore(filepath.Join(parent, "credentials.txt"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	checks := map[string]error{
		"write":  fs.Write([]byte("username: alice\n")),
		"save":   fs.Save(ctx, sampleRecord()),
		"delete": fs.Delete(ctx, "alice"),
	}
	_, checks["read"] = fs.Read()
	_, checks["load"] = fs.Load(ctx, "alice")

	for op, err := range checks {
		var pathErr *iofs.PathError
		if !errors.As(err, &pathErr) {
			t.Fatalf("%s: expected *fs.PathError, got %v", op, err)
		}
		if errors.Is(err, ErrMalformed) || errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: I/O error was reclassified: %v", op, err)
		}
	}
}
