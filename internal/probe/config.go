// Package probe replays garments from an outfit corpus against a running
// recommender and checks every response against the corpus it was built on.
package probe

import (
	"time"

	"github.com/okian/lookbook/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	CorpusPath string        // Corpus the service was started with
	K          int           // Requested results per query
	Limit      int           // Max queries to send; 0 sends all
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Log every violation as it is found
}

// Query is one label request derived from the corpus.
type Query struct {
	Gender string
	Item   model.Item
}

// Violation describes a response that broke a recommendation rule.
type Violation struct {
	Query  Query
	Rule   string
	Detail string
}

// Stats holds run statistics.
type Stats struct {
	Queries        int
	Sent           int
	Succeeded      int
	Failed         int
	Violations     int
	Cooccurrence   int
	NaiveBayes     int
	WithImage      int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	ViolationsList []Violation
}
