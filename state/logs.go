package state

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LogResult - Everything reconstructed from one log file
type LogResult struct {
	UUID    uuid.UUID
	Dialect string

	// Set when the result was restricted to a single database
	Database string

	Queries     []Query
	Errors      []ErrorRecord
	ParseErrors []ParseError

	HasDurationInfo bool
	ParseDuration   time.Duration
	LineCount       int
}

// UniqueQueries - Number of distinct query texts
func (r LogResult) UniqueQueries() int {
	seen := make(map[string]bool)
	for _, q := range r.Queries {
		seen[q.Text] = true
	}
	return len(seen)
}

// Databases - Distinct databases of all queries, in order of first appearance
func (r LogResult) Databases() []string {
	var databases []string
	seen := make(map[string]bool)
	for _, q := range r.Queries {
		if !seen[q.Database] {
			seen[q.Database] = true
			databases = append(databases, q.Database)
		}
	}
	return databases
}

// ForDatabase - Copy of the result restricted to queries and errors of one database
func (r LogResult) ForDatabase(database string) LogResult {
	filtered := r
	filtered.Database = database
	filtered.Queries = nil
	filtered.Errors = nil
	for _, q := range r.Queries {
		if q.Database == database {
			filtered.Queries = append(filtered.Queries, q)
		}
	}
	for _, e := range r.Errors {
		if e.Database == database {
			filtered.Errors = append(filtered.Errors, e)
		}
	}
	return filtered
}

// Normalize rewrites all query texts for frequency aggregation
func (r *LogResult) Normalize(mode string) {
	for idx := range r.Queries {
		r.Queries[idx].Normalize(mode)
	}
}

// TotalDuration - Sum of all known query durations, in seconds
func (r LogResult) TotalDuration() float64 {
	var total float64
	for _, q := range r.Queries {
		if q.Duration.Valid {
			total += q.Duration.Float64
		}
	}
	return total
}

// QueriesByDuration - Queries with a known duration, slowest first
func (r LogResult) QueriesByDuration() []Query {
	var timed []Query
	for _, q := range r.Queries {
		if q.Duration.Valid {
			timed = append(timed, q)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].Duration.Float64 > timed[j].Duration.Float64
	})
	return timed
}
