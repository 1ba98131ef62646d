package typos

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCorpus(t *testing.T) {
	text := "waze\twave\tIN\nteh\tthe\tRE\nthe\tthe\tRE\nbroken-line\n"

	table := ParseCorpus(text)

	if got := table["wave"]; len(got) != 1 || got[0] != "waze" {
		t.Fatalf("unexpected typos for wave: %v", got)
	}
	if got := table["the"]; len(got) != 2 {
		t.Fatalf("expected both typos for the, got %v", got)
	}
	if _, ok := table["broken-line"]; ok {
		t.Fatalf("lines without a correction column must be skipped")
	}
}

func TestLoadUnsupportedLanguage(t *testing.T) {
	table, err := Load("fr-FR", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("expected an empty table, got %d entries", len(table))
	}
}

func TestLoadFromCache(t *testing.T) {
	dir := t.TempDir()
	cached := `{"wave": ["waze"]}`
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(cached), 0o644); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	table, err := Load("en-US", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table["wave"]; len(got) != 1 || got[0] != "waze" {
		t.Fatalf("unexpected typos for wave: %v", got)
	}
}

func TestLoadCacheKeyedByBaseLanguage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	// en-GB and en-US share the en cache entry.
	for _, lang := range []string{"en-US", "en-GB", "en"} {
		if _, err := Load(lang, dir); err != nil {
			t.Fatalf("Load(%q) failed: %v", lang, err)
		}
	}
}

func TestLoadCorruptCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	if _, err := Load("en", dir); err == nil {
		t.Fatalf("expected an error for a corrupt cache")
	}
}

func TestWriteCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.json")
	table := map[string][]string{"wave": {"waze", "wvae"}}

	if err := writeCache(dir, path, table); err != nil {
		t.Fatalf("writeCache failed: %v", err)
	}
	got, err := readCache(path)
	if err != nil {
		t.Fatalf("readCache failed: %v", err)
	}
	if len(got["wave"]) != 2 {
		t.Fatalf("unexpected table after round trip: %v", got)
	}
}
