package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

type mockSpec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *mockSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	if err != nil {
		t.Fatalf("writing asset file: %v", err)
	}
}

func TestFileStore_Load(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "one.json", `{"version":1,"id":"item-1","spec":{"name":"First","value":1}}`)
	writeAsset(t, tmpDir, "two.json", `{"version":1,"id":"item-2","spec":{"name":"Second","value":2}}`)
	writeAsset(t, tmpDir, "notes.txt", `not an asset`)

	store, err := NewFileStore[*mockSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 2)

	item1 := store.Get("item-1")
	testutil.AssertEqual(t, "item-1 name", item1.Name, "First")
	testutil.AssertEqual(t, "item-1 value", item1.Value, 1)
}

func TestFileStore_LoadErrors(t *testing.T) {
	tests := map[string]struct {
		files       map[string]string
		expErrPart  string
	}{
		"duplicate id": {
			files: map[string]string{
				"a.json": `{"version":1,"id":"dup","spec":{"name":"A","value":1}}`,
				"b.json": `{"version":1,"id":"dup","spec":{"name":"B","value":2}}`,
			},
			expErrPart: "duplicate key",
		},
		"missing version": {
			files: map[string]string{
				"a.json": `{"id":"no-version","spec":{"name":"A","value":1}}`,
			},
			expErrPart: "version must be set",
		},
		"missing id": {
			files: map[string]string{
				"a.json": `{"version":1,"spec":{"name":"A","value":1}}`,
			},
			expErrPart: "id must be set",
		},
		"malformed json": {
			files: map[string]string{
				"a.json": `{"version":1,`,
			},
			expErrPart: "unmarshalling asset",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			for fname, content := range tt.files {
				writeAsset(t, tmpDir, fname, content)
			}

			_, err := NewFileStore[*mockSpec](tmpDir)
			testutil.AssertErrorContains(t, err, tt.expErrPart)
		})
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	store, err := NewFileStore[*mockSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := store.Get("nope")
	if result != nil {
		t.Errorf("expected nil for missing id, got %+v", result)
	}
}

func TestFileStore_GetAllCopies(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "one.json", `{"version":1,"id":"item-1","spec":{"name":"First","value":1}}`)

	store, err := NewFileStore[*mockSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := store.GetAll()
	delete(all, "item-1")

	// Deleting from the returned map must not affect the store.
	if store.Get("item-1") == nil {
		t.Error("GetAll returned the internal map, not a copy")
	}
}

func TestSmartIdentifier_Resolve(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "one.json", `{"version":1,"id":"item-1","spec":{"name":"First","value":1}}`)

	store, err := NewFileStore[*mockSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		key    Identifier
		expErr string
	}{
		"resolves existing": {key: "item-1"},
		"missing target":    {key: "item-9", expErr: `"item-9" not found`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			id := NewSmartIdentifier[*mockSpec](tt.key)
			err := id.Resolve(store)

			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "resolved name", id.Get().Name, "First")
		})
	}
}
