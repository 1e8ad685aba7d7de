// Package query remembers the sources that were opened and suggests them back,
// most opened first.
package query

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/where"
	"golang.org/x/exp/slices"
)

type sourceRecord struct {
	Rank   int    `json:"rank"`
	Source string `json:"source"`
}

var cacher = gache.New[map[string]*sourceRecord](
	&gache.Options{
		Path:       where.Queries(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var (
	mu              sync.Mutex
	suggestionCache = make(map[string][]*sourceRecord)
)

// Remember records an opened source, or raises its rank by weight.
func Remember(source string, weight int) error {
	source = sanitize(source)
	if source == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*sourceRecord)
	}

	if record, ok := cached[source]; ok {
		record.Rank += weight
	} else {
		cached[source] = &sourceRecord{Rank: weight, Source: source}
	}

	suggestionCache = make(map[string][]*sourceRecord)
	return cacher.Set(cached)
}

// Suggest returns the best remembered source for a partial input.
func Suggest(q string) mo.Option[string] {
	suggestions := SuggestMany(q)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns every remembered source fuzzily matching q, by rank.
func SuggestMany(q string) []string {
	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	records, ok := suggestionCache[q]
	if !ok {
		cached, expired, err := cacher.Get()
		if err != nil || expired || cached == nil {
			return []string{}
		}

		for _, record := range cached {
			if fuzzy.MatchFold(q, record.Source) {
				records = append(records, record)
			}
		}

		slices.SortFunc(records, func(a, b *sourceRecord) int {
			if a.Rank != b.Rank {
				return b.Rank - a.Rank
			}
			return strings.Compare(a.Source, b.Source)
		})

		suggestionCache[q] = records
	}

	return lo.Map(records, func(r *sourceRecord, _ int) string {
		return r.Source
	})
}

// Sources are case sensitive; only surrounding space is dropped.
func sanitize(q string) string {
	return strings.TrimSpace(q)
}
