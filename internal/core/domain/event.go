package domain

import "time"

// Event records one notification sweep in the event log.
type Event struct {
	ID           int64
	Timestamp    time.Time
	RawTimestamp float64
	Description  string
}

// WhitelistEntry is a single allowed client IP.
type WhitelistEntry struct {
	ID int64
	IP string
}
