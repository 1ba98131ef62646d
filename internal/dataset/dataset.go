// Package dataset loads evaluation sentences, grouped by domain.
package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
)

// Load reads a dataset file: a JSON object mapping domain names to lists of
// clean sentences.
func Load(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var domains map[string][]string
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("dataset has no domains")
	}
	for domain, sentences := range domains {
		if domain == "" {
			return nil, fmt.Errorf("dataset has an empty domain name")
		}
		if len(sentences) == 0 {
			return nil, fmt.Errorf("domain %q has no sentences", domain)
		}
	}
	return domains, nil
}

// Cap shuffles each domain with the given seed and truncates the dataset to
// at most maxSentences in total, sharing the cap evenly across domains.
// A non-positive maxSentences keeps everything.
func Cap(domains map[string][]string, maxSentences int, seed int64) map[string][]string {
	out := make(map[string][]string, len(domains))
	if maxSentences <= 0 {
		for domain, sentences := range domains {
			out[domain] = sentences
		}
		return out
	}

	perDomain := maxSentences / len(domains)
	if perDomain < 1 {
		perDomain = 1
	}

	names := make([]string, 0, len(domains))
	for domain := range domains {
		names = append(names, domain)
	}
	sort.Strings(names)

	rng := rand.New(rand.NewSource(seed))
	for _, domain := range names {
		sentences := domains[domain]
		shuffled := make([]string, len(sentences))
		copy(shuffled, sentences)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if len(shuffled) > perDomain {
			shuffled = shuffled[:perDomain]
		}
		out[domain] = shuffled
	}
	return out
}
