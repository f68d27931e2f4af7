package model

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Fingerprint identifies a repeatable spoke length recipe.
// Labels are compared exactly (case-sensitive).
type Fingerprint struct {
	RimLabel     string
	HubLabel     string
	Holes        int
	Crosses      int
	StraightPull bool
}

// Key returns a canonical string representation of the fingerprint.
func (f Fingerprint) Key() string {
	lacing := "jb"
	if f.StraightPull {
		lacing = "sp"
	}
	return fmt.Sprintf("%s|%s|%d|%d|%s", f.RimLabel, f.HubLabel, f.Holes, f.Crosses, lacing)
}

type RecipeEntry struct {
	Fingerprint
	Left      float64
	Right     float64
	HitCount  int
	UpdatedAt time.Time
}

type UpsertOutcome int

const (
	UpsertCreated UpsertOutcome = iota
	UpsertUpdated
)

func (o UpsertOutcome) String() string {
	if o == UpsertUpdated {
		return "updated"
	}
	return "created"
}

type UpsertResult struct {
	Outcome  UpsertOutcome
	HitCount int
	Entry    RecipeEntry
}

// OutcomeFor derives the outcome from the hit count after an upsert.
func OutcomeFor(hitCount int) UpsertOutcome {
	if hitCount > 1 {
		return UpsertUpdated
	}
	return UpsertCreated
}

// SortByHits orders entries by hit count (desc), ties by fingerprint key.
func SortByHits(entries []*RecipeEntry) {
	slices.SortFunc(entries, func(a, b *RecipeEntry) int {
		if a.HitCount != b.HitCount {
			return b.HitCount - a.HitCount
		}
		return cmp.Compare(a.Key(), b.Key())
	})
}
