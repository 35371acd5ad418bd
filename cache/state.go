package cache

import (
	"time"
)

// Status describes what an entry holds.
type Status string

const (
	// StatusPending: no data and no error yet
	StatusPending Status = "pending"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// FetchStatus describes whether a fetch for the entry is in flight.
type FetchStatus string

const (
	FetchIdle     FetchStatus = "idle"
	FetchFetching FetchStatus = "fetching"
)

// State is a point-in-time copy of an entry.
//
// Data survives a failed refetch: an entry can hold both Data from the last
// success and Err from the latest attempt, in which case Status is error.
type State struct {
	Key         Key
	Data        any
	Err         error
	Status      Status
	FetchStatus FetchStatus
	UpdatedAt   time.Time
	ErrorAt     time.Time
	Invalidated bool
	Hydrated    bool
	Observers   int
}

// HasData reports whether the entry ever received data, fetched or hydrated.
func (s State) HasData() bool {
	return !s.UpdatedAt.IsZero()
}

// IsFetching reports whether a fetch is in flight.
func (s State) IsFetching() bool {
	return s.FetchStatus == FetchFetching
}

// IsStale reports whether the data must be refetched before use.
func (s State) IsStale(staleTime time.Duration, now time.Time) bool {
	if !s.HasData() || s.Invalidated || s.Hydrated {
		return true
	}
	return now.Sub(s.UpdatedAt) >= staleTime
}

type entry struct {
	state         State
	gen           uint64
	lastAccess    time.Time
	invalidations uint64
	hydrateTried  bool
}

func (e *entry) snapshot() State {
	return e.state
}
