// Package recommend provides a thin vector-similarity lookup over a
// pre-built product catalog. Index construction is out of scope; this
// only loads and queries an existing catalog artifact.
package recommend

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"strings"

	"smart-retail/pkg/api"
)

// catalogEntry is the on-disk form of one indexed product.
type catalogEntry struct {
	ID       string            `json:"id"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type indexedItem struct {
	entry catalogEntry
	vec   map[string]float64
	norm  float64
}

// Index answers similarity queries against the loaded catalog. It is
// read-only after load and safe for concurrent use.
type Index struct {
	items []indexedItem
}

// LoadIndex reads a JSON catalog artifact and prepares it for querying.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	ix := &Index{items: make([]indexedItem, 0, len(entries))}
	for _, e := range entries {
		vec := termVector(e.Document)
		ix.items = append(ix.items, indexedItem{entry: e, vec: vec, norm: norm(vec)})
	}
	return ix, nil
}

// Count reports the number of indexed items.
func (ix *Index) Count() int {
	return len(ix.items)
}

// Query returns up to k items ranked by cosine similarity to the query
// text. An empty index or query yields no results.
func (ix *Index) Query(query string, k int) []api.RecommendedItem {
	if k <= 0 {
		k = 10
	}
	qv := termVector(query)
	qn := norm(qv)
	if qn == 0 || len(ix.items) == 0 {
		return []api.RecommendedItem{}
	}

	scored := make([]api.RecommendedItem, 0, len(ix.items))
	for _, item := range ix.items {
		score := cosine(qv, qn, item.vec, item.norm)
		if score <= 0 {
			continue
		}
		scored = append(scored, api.RecommendedItem{
			ID:       item.entry.ID,
			Document: item.entry.Document,
			Metadata: item.entry.Metadata,
			Score:    score,
		})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func termVector(text string) map[string]float64 {
	vec := make(map[string]float64)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(tok) < 2 {
			continue
		}
		vec[tok]++
	}
	return vec
}

func norm(vec map[string]float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func cosine(a map[string]float64, an float64, b map[string]float64, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for t, av := range a {
		if bv, ok := b[t]; ok {
			dot += av * bv
		}
	}
	return dot / (an * bn)
}
