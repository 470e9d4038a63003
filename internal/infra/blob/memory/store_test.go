package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"expdb/internal/blob/core"
)

func TestStore_MissingHeadGet(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, err := store.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected head ErrNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected get ErrNotFound, got %v", err)
	}
}

func TestStore_PutGetList(t *testing.T) {
	store := New()
	ctx := context.Background()
	if store.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	src := []byte("id_gen,id_transcript\n")
	info := store.Put("b/expr.csv", src)
	if info.Key != "b/expr.csv" || info.Size != int64(len(src)) {
		t.Fatalf("unexpected info %+v", info)
	}
	src[0] = 'X'
	store.Put("a/meta.csv", []byte("column\n"))

	_, rc, err := store.Get(ctx, "b/expr.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "id_gen,id_transcript\n" {
		t.Fatalf("stored content must not alias caller slice: %q", b)
	}

	list, err := store.List(ctx, "")
	if err != nil || len(list) != 2 || list[0].Key != "a/meta.csv" {
		t.Fatalf("unexpected list %v %+v", err, list)
	}
	list, _ = store.List(ctx, "b/")
	if len(list) != 1 || list[0].Key != "b/expr.csv" {
		t.Fatalf("unexpected prefix list %+v", list)
	}

	store.Put("b/expr.csv", []byte("x"))
	h, err := store.Head(ctx, "b/expr.csv")
	if err != nil || h.Size != 1 {
		t.Fatalf("expected replaced object, got %+v %v", h, err)
	}
}

func TestStore_ConcurrentReaders(t *testing.T) {
	store := New()
	store.Put("k", []byte("v"))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				store.Put(fmt.Sprintf("k%d", i), []byte("v"))
				return
			}
			if _, rc, err := store.Get(context.Background(), "k"); err == nil {
				_ = rc.Close()
			}
		}(i)
	}
	wg.Wait()
	list, _ := store.List(context.Background(), "k")
	if len(list) != 5 {
		t.Fatalf("expected 5 objects, got %d", len(list))
	}
}
