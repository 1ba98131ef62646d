// Package typos loads corpora of common misspellings, keyed by the correct
// word.
package typos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// tweetTypoCorpusURL points at a corpus of typos harvested from tweets,
// with one tab-separated "typo correction ..." record per line.
const tweetTypoCorpusURL = "https://luululu.com/tweet/typo-corpus-r1.txt"

// DefaultCacheDir returns the directory used to cache downloaded corpora.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "tapscore", "typos")
}

// Load returns the common-typo table for a language, mapping each correct
// word to its known misspellings. The corpus is fetched once and cached as
// JSON in cacheDir; languages without a corpus get an empty table.
func Load(lang, cacheDir string) (map[string][]string, error) {
	return LoadContext(context.Background(), lang, cacheDir)
}

// LoadContext is Load with a caller-provided context for the corpus fetch.
func LoadContext(ctx context.Context, lang, cacheDir string) (map[string][]string, error) {
	baseLang := strings.SplitN(lang, "-", 2)[0]

	cachePath := filepath.Join(cacheDir, baseLang+".json")
	if table, err := readCache(cachePath); err == nil {
		return table, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if baseLang != "en" {
		return map[string][]string{}, nil
	}

	table, err := fetchTweetTypoCorpus(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeCache(cacheDir, cachePath, table); err != nil {
		return nil, err
	}
	return table, nil
}

func readCache(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table map[string][]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode typo cache: %w", err)
	}
	return table, nil
}

func writeCache(dir, path string, table map[string][]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode typo cache: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "typos-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cache: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write typo cache: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move cache into place: %w", err)
	}
	return nil
}

func fetchTweetTypoCorpus(ctx context.Context) (map[string][]string, error) {
	body, err := httpGet(ctx, tweetTypoCorpusURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read typo corpus: %w", err)
	}
	return ParseCorpus(string(data)), nil
}

// ParseCorpus parses the tab-separated typo corpus format: the first column
// is the misspelling, the second the correct word.
func ParseCorpus(text string) map[string][]string {
	table := make(map[string][]string)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		typo, correct := fields[0], fields[1]
		if typo == "" || correct == "" {
			continue
		}
		table[correct] = append(table[correct], typo)
	}
	return table
}

func httpGet(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected corpus status: %s", resp.Status)
	}
	return resp.Body, nil
}
