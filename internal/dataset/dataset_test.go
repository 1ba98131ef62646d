package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeDataset(t, `{"chat": ["hello there", "how are you"], "news": ["markets rose today"]}`)
	domains, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(domains))
	}
	if len(domains["chat"]) != 2 {
		t.Fatalf("unexpected chat sentences: %v", domains["chat"])
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"no domains":        `{}`,
		"empty domain":      `{"chat": []}`,
		"empty domain name": `{"": ["hello there"]}`,
		"not json":          `sentences`,
	} {
		path := writeDataset(t, content)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestCap(t *testing.T) {
	domains := map[string][]string{
		"chat": {"a", "b", "c", "d"},
		"news": {"e", "f", "g", "h"},
	}

	capped := Cap(domains, 4, 31)
	if len(capped["chat"]) != 2 || len(capped["news"]) != 2 {
		t.Fatalf("expected 2 sentences per domain, got %d and %d", len(capped["chat"]), len(capped["news"]))
	}

	// Same seed, same selection.
	again := Cap(domains, 4, 31)
	for domain := range capped {
		for i := range capped[domain] {
			if capped[domain][i] != again[domain][i] {
				t.Fatalf("capping must be deterministic for a seed")
			}
		}
	}
}

func TestCapKeepsAllWithoutLimit(t *testing.T) {
	domains := map[string][]string{"chat": {"a", "b"}}
	capped := Cap(domains, 0, 31)
	if len(capped["chat"]) != 2 {
		t.Fatalf("expected all sentences kept, got %d", len(capped["chat"]))
	}
}
