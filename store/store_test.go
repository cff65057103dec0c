package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type kv interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

func exercise(t *testing.T, s kv) {
	t.Helper()

	if _, err := s.Get("eq.gains"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key err = %v", err)
	}

	if err := s.Set("eq.gains", []byte(`[1,2,3]`)); err != nil {
		t.Fatal(err)
	}

	v, err := s.Get("eq.gains")
	if err != nil || string(v) != `[1,2,3]` {
		t.Fatalf("got %q, %v", v, err)
	}

	// Returned slices are copies.
	v[0] = 'x'
	again, _ := s.Get("eq.gains")
	if string(again) != `[1,2,3]` {
		t.Fatalf("store aliased caller slice: %q", again)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exercise(t, m)

	if err := m.Set("a", []byte("true")); err != nil {
		t.Fatal(err)
	}
	if keys := m.Keys(); len(keys) != 2 || keys[0] != "a" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestFile_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, f)

	if err := f.Set("eq.enabled", []byte("true")); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	v, err := reopened.Get("eq.enabled")
	if err != nil || string(v) != "true" {
		t.Fatalf("reopened value %q, %v", v, err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("directory holds %d entries, want only the store file", len(entries))
	}
}

func TestFile_RejectsInvalidJSON(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "s.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Set("k", []byte("{")); err == nil {
		t.Fatal("invalid JSON accepted")
	}
}

func TestOpenFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Fatal("corrupt file accepted")
	}
}
