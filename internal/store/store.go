// Package store persists validation profiles and the run history.
//
// Two implementations exist for each repository: an in-memory one used when
// no database is configured (and in tests) and a PostgreSQL one built on pgx.
// Both return ErrNotFound for missing profiles so callers can map it to a
// user-facing message without knowing which backend is in use.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("profile not found")

// DefaultHistoryLimit is the number of history entries kept when no limit is configured.
const DefaultHistoryLimit = 5

// Profile is a named, ordered set of rules applied together to a file.
type Profile struct {
	ID            string                      `json:"id" yaml:"id"`
	Name          string                      `json:"name" yaml:"name"`
	Description   string                      `json:"description" yaml:"description"`
	LastUpdated   time.Time                   `json:"lastUpdated" yaml:"lastUpdated"`
	SampleHeaders []string                    `json:"sampleHeaders" yaml:"sampleHeaders"`
	Rules         []validation.RuleDefinition `json:"rules" yaml:"rules"`
}

// Clone returns a deep copy of p so stored profiles never share slices with callers.
func (p Profile) Clone() Profile {
	c := p
	if p.SampleHeaders != nil {
		c.SampleHeaders = append([]string(nil), p.SampleHeaders...)
	}
	if p.Rules != nil {
		c.Rules = append([]validation.RuleDefinition(nil), p.Rules...)
	}
	return c
}

// RuleIndex returns the position of the rule with the given id, or -1.
func (p Profile) RuleIndex(ruleID string) int {
	for i, r := range p.Rules {
		if r.ID == ruleID {
			return i
		}
	}
	return -1
}

// ProfileRepository stores profiles.
type ProfileRepository interface {
	// Get returns the profile with id, or ErrNotFound.
	Get(ctx context.Context, id string) (Profile, error)
	// List returns all profiles ordered by name.
	List(ctx context.Context) ([]Profile, error)
	// Put inserts or replaces a profile.
	Put(ctx context.Context, p Profile) error
	// Delete removes a profile. Deleting a missing profile returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// HistoryRepository stores summaries of completed runs.
type HistoryRepository interface {
	// Add records an entry, dropping the oldest entries beyond the limit.
	Add(ctx context.Context, entry validation.HistoryEntry) error
	// List returns entries most recent first.
	List(ctx context.Context) ([]validation.HistoryEntry, error)
}
