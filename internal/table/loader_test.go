package table_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"expdb/internal/blob"
	"expdb/internal/table"
)

func gz(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestLoaderFormats(t *testing.T) {
	store := blob.NewMemory()
	store.Put("plain.csv", []byte("id_gen,v\ng1,1\n"))
	store.Put("tabbed.tsv", []byte("id_gen\tv\ng1\t1\n"))
	store.Put("TABBED.TAB", []byte("id_gen\tv\ng1\t1\n"))
	store.Put("packed.csv.gz", gz(t, "id_gen,v\ng1,1\n"))
	store.Put("packed.tsv.gz", gz(t, "id_gen\tv\ng1\t1\n"))
	loader := table.NewLoader(store)

	for _, key := range []string{"plain.csv", "tabbed.tsv", "TABBED.TAB", "packed.csv.gz", "packed.tsv.gz"} {
		tbl, err := loader.Load(context.Background(), key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		if tbl.Len() != 1 || tbl.Cell(0, "id_gen") != "g1" || tbl.Cell(0, "v") != "1" {
			t.Fatalf("%s: unexpected table %v %v", key, tbl.Columns(), tbl.Row(0))
		}
	}
}

func TestLoaderNotFound(t *testing.T) {
	loader := table.NewLoader(blob.NewMemory())
	if _, err := loader.Load(context.Background(), "absent.csv"); !errors.Is(err, table.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	fs, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	fsLoader := table.NewLoader(fs)
	for _, key := range []string{"../etc/passwd", "/etc/passwd", ""} {
		if _, err := fsLoader.Load(context.Background(), key); !errors.Is(err, table.ErrNotFound) {
			t.Fatalf("%q: expected ErrNotFound, got %v", key, err)
		}
	}
}

func TestLoaderUnreadable(t *testing.T) {
	store := blob.NewMemory()
	store.Put("empty.csv", nil)
	store.Put("corrupt.csv.gz", []byte("not gzip"))
	store.Put("long.csv", []byte("a\n1,2\n"))
	loader := table.NewLoader(store)
	for _, key := range []string{"empty.csv", "corrupt.csv.gz", "long.csv"} {
		_, err := loader.Load(context.Background(), key)
		if !errors.Is(err, table.ErrUnreadable) {
			t.Fatalf("%s: expected ErrUnreadable, got %v", key, err)
		}
	}
}

type failingStore struct {
	blob.Store
	err error
}

func (f failingStore) Get(context.Context, string) (blob.Info, io.ReadCloser, error) {
	return blob.Info{}, nil, f.err
}

func TestLoaderStoreFailures(t *testing.T) {
	loader := table.NewLoader(failingStore{err: errors.New("connection reset")})
	if _, err := loader.Load(context.Background(), "x.csv"); !errors.Is(err, table.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader = table.NewLoader(failingStore{err: context.Canceled})
	_, err := loader.Load(ctx, "x.csv")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, table.ErrUnreadable) || errors.Is(err, table.ErrNotFound) {
		t.Fatalf("context errors must not be classified, got %v", err)
	}
}

func TestLoaderFilesystemNestedKey(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "vitis", "2024")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "expr.csv"), []byte("id_gen,id_transcript\ng1,g1.t1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs, err := blob.NewFilesystem(root)
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	tbl, err := table.NewLoader(fs).Load(context.Background(), "vitis/2024/expr.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Cell(0, "id_transcript") != "g1.t1" {
		t.Fatalf("unexpected row %v", tbl.Row(0))
	}
}
