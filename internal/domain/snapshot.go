package domain

import "time"

// SortState is the active sort configuration of a view.
type SortState struct {
	// Key active sort field, nil when no sort was requested yet.
	Key       *SortField `json:"key"`
	Direction Direction  `json:"direction"`
}

// Snapshot is the derived view handed to renderers after every view mutation.
type Snapshot struct {
	Records     []Invoice `json:"records"`
	Loading     bool      `json:"loading"`
	Filter      string    `json:"filter"`
	Sort        SortState `json:"sort"`
	Total       int       `json:"total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// IsSortedBy reports whether f is the active sort key.
func (s Snapshot) IsSortedBy(f SortField) bool {
	return s.Sort.Key != nil && *s.Sort.Key == f
}
