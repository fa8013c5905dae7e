package models

import "time"

// QueryResult holds the outcome of a row-returning query
type QueryResult struct {
	Columns      []string
	Rows         [][]string
	RowsAffected int64
	Duration     time.Duration
	Error        error
}

// ForeignKey is a single-column foreign key of a table
type ForeignKey struct {
	Name          string
	Column        string
	ForeignSchema string
	ForeignTable  string
	ForeignColumn string
}

// SavedView is a named set of committed OmniBox parameters for a source
type SavedView struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Source      string    `yaml:"source" json:"source"`
	Params      []string  `yaml:"params" json:"params"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
	UsageCount  int       `yaml:"usage_count" json:"usage_count"`
	LastUsed    time.Time `yaml:"last_used,omitempty" json:"last_used,omitempty"`
}
