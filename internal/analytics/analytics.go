// Package analytics computes rankings and mention-frequency aggregates over
// a loaded collection.
package analytics

import (
	"sort"
	"strings"

	"github.com/codeinsight/insight-agent/internal/domain"
	apperrors "github.com/codeinsight/insight-agent/internal/errors"
)

// DefaultTopN is the report depth used by the analyze command
const DefaultTopN = 5

// Mention pairs a record with how often a term occurs in its text fields
type Mention struct {
	Record domain.Record
	Count  int
}

// Rank returns the top records sorted descending by the source-specific
// ranking field (stars for repositories, score for posts). Ties keep the
// original insertion order. An unrecognized source type is an error: there
// is no ranking field to default to.
func Rank(c *domain.Collection, topN int) ([]domain.Record, error) {
	if !domain.KnownSource(c.Source) {
		return nil, apperrors.NewInputOutOfRangeError(
			"no ranking field defined for source type " + string(c.Source))
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	ranked := make([]domain.Record, len(c.Records))
	copy(ranked, c.Records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankValue() > ranked[j].RankValue()
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// CountMentions counts case-insensitive occurrences of term in each
// record's search text (description+readme for repositories,
// title+selftext+comment sample for posts). Records with no occurrences are
// dropped; the rest sort descending by count with ties in original order.
// An empty term or empty collection yields an empty result.
//
// Matching is plain substring counting with no word-boundary check, so
// "rust" also counts inside "trust".
func CountMentions(c *domain.Collection, term string) []Mention {
	if term == "" || c.IsEmpty() {
		return nil
	}

	needle := strings.ToLower(term)
	var mentions []Mention
	for _, rec := range c.Records {
		count := strings.Count(strings.ToLower(rec.SearchText()), needle)
		if count > 0 {
			mentions = append(mentions, Mention{Record: rec, Count: count})
		}
	}

	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].Count > mentions[j].Count
	})
	return mentions
}
