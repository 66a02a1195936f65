// Package board models the persisted leaderboard document: its tier layout,
// its JSON encoding and the ranking derived from it.
package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/typerank/internal/domain/types"
)

// ErrMalformed reports a stored document that is not the expected JSON shape.
var ErrMalformed = errors.New("malformed leaderboard document")

// untieredKey holds the single bucket of an untiered document.
const untieredKey = ""

// Scores maps a player name to that player's score.
type Scores map[string]float64

// Layout is the set of recognized difficulty tiers. The zero Layout is untiered.
type Layout struct {
	tiers []string
	index map[string]struct{}
}

// NewLayout builds a layout from tier names; duplicates keep their first position.
// No tiers means an untiered board.
func NewLayout(tiers ...string) Layout {
	l := Layout{index: make(map[string]struct{}, len(tiers))}
	for _, t := range tiers {
		if _, dup := l.index[t]; dup {
			continue
		}
		l.index[t] = struct{}{}
		l.tiers = append(l.tiers, t)
	}
	return l
}

// Tiered reports whether scores are partitioned by tier.
func (l Layout) Tiered() bool { return len(l.tiers) > 0 }

// Tiers returns the recognized tiers in configured order.
func (l Layout) Tiers() []string {
	out := make([]string, len(l.tiers))
	copy(out, l.tiers)
	return out
}

// Recognized reports whether tier may be addressed. Untiered layouts accept
// any value because the tier is ignored.
func (l Layout) Recognized(tier string) bool {
	if !l.Tiered() {
		return true
	}
	_, ok := l.index[tier]
	return ok
}

// Document is the decoded leaderboard.
type Document struct {
	layout  Layout
	buckets map[string]Scores
}

// Empty returns a fresh document: one empty bucket per recognized tier, or a
// single empty bucket when untiered.
func Empty(layout Layout) *Document {
	d := &Document{layout: layout, buckets: make(map[string]Scores)}
	d.fill()
	return d
}

// Decode parses a stored document. Recognized tiers missing from data are
// added empty; unknown tier keys are kept so a rewrite does not drop them.
func Decode(layout Layout, data []byte) (*Document, error) {
	d := &Document{layout: layout, buckets: make(map[string]Scores)}
	if layout.Tiered() {
		var raw map[string]Scores
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		for tier, scores := range raw {
			if scores == nil {
				scores = Scores{}
			}
			d.buckets[tier] = scores
		}
	} else {
		var flat Scores
		if err := json.Unmarshal(data, &flat); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if flat != nil {
			d.buckets[untieredKey] = flat
		}
	}
	d.fill()
	return d, nil
}

// Encode renders the document in its persisted shape, indented by two spaces.
func (d *Document) Encode() ([]byte, error) {
	if d.layout.Tiered() {
		return json.MarshalIndent(d.buckets, "", "  ")
	}
	return json.MarshalIndent(d.buckets[untieredKey], "", "  ")
}

// Scores returns the live bucket for tier; mutations are reflected in the document.
func (d *Document) Scores(tier string) Scores {
	key := d.key(tier)
	s, ok := d.buckets[key]
	if !ok {
		s = Scores{}
		d.buckets[key] = s
	}
	return s
}

// Reset empties one tier, leaving the others untouched.
func (d *Document) Reset(tier string) {
	d.buckets[d.key(tier)] = Scores{}
}

// Players returns how many players hold a score in tier.
func (d *Document) Players(tier string) int {
	return len(d.buckets[d.key(tier)])
}

// Ranking returns tier's entries ordered by score descending, ties by name ascending.
func (d *Document) Ranking(tier string) []types.Entry {
	return Rank(d.buckets[d.key(tier)])
}

func (d *Document) key(tier string) string {
	if !d.layout.Tiered() {
		return untieredKey
	}
	return tier
}

func (d *Document) fill() {
	if !d.layout.Tiered() {
		if _, ok := d.buckets[untieredKey]; !ok {
			d.buckets[untieredKey] = Scores{}
		}
		return
	}
	for _, t := range d.layout.tiers {
		if _, ok := d.buckets[t]; !ok {
			d.buckets[t] = Scores{}
		}
	}
}

// Rank orders scores by score descending, breaking ties by name ascending.
func Rank(scores Scores) []types.Entry {
	out := make([]types.Entry, 0, len(scores))
	for name, score := range scores {
		out = append(out, types.Entry{Name: name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}
