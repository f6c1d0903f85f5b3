package models

import (
	"database/sql"
	"time"
)

// SessionTracking represents one study session. EndedAt is null while the
// session is still in progress.
type SessionTracking struct {
	SessionID        string        `json:"session_id" db:"session_id"`
	UserID           int64         `json:"user_id" db:"user_id"`
	StartedAt        time.Time     `json:"started_at" db:"started_at"`
	EndedAt          sql.NullTime  `json:"ended_at" db:"ended_at"`
	DeviceCategory   string        `json:"device_category" db:"device_category"`
	UTCOffsetMinutes sql.NullInt64 `json:"utc_offset_minutes" db:"utc_offset_minutes"` // local tz at review time, null when unknown
}

// IsLive reports whether the session has not been closed yet.
func (s SessionTracking) IsLive() bool {
	return !s.EndedAt.Valid
}

// Location returns the session's local timezone, falling back to UTC when the
// client never reported an offset.
func (s SessionTracking) Location() *time.Location {
	if !s.UTCOffsetMinutes.Valid {
		return time.UTC
	}
	return time.FixedZone("local", int(s.UTCOffsetMinutes.Int64)*60)
}
