// Package domain defines the mention analytics event model
package domain

import "time"

// Event is one archived brand mention, denormalized for columnar queries
type Event struct {
	JobID        string
	Brand        string
	Provider     string
	Prompt       string
	Surface      string
	Sentiment    string
	IsCompetitor bool
	Position     float64
	DetectedAt   time.Time
}

// BrandCount is an aggregation row
type BrandCount struct {
	Brand    string `json:"brand"`
	Mentions uint64 `json:"mentions"`
}
