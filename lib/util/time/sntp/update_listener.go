package sntp

import "time"

// UpdateListener receives every applied time correction.
type UpdateListener interface {
	SetNow(now time.Time, stratum uint8)
}

// ExtendedUpdateListener is checked by type assertion; plain UpdateListener
// implementations keep working.
type ExtendedUpdateListener interface {
	UpdateListener
	// OnInitialized is called once, after the first query cycle.
	OnInitialized()
	// OnSyncFailure is called after each failed cycle.
	OnSyncFailure(consecutiveFails int)
	// OnSyncLost is called when consecutive failures reach the threshold.
	OnSyncLost()
}

// ListenerIdentifier lets RemoveListener match listeners by ID instead of
// equality.
type ListenerIdentifier interface {
	ListenerID() string
}
