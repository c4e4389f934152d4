package models

const (
	// HeaderUserID carries the acting user id on every item, booking and request call.
	HeaderUserID = "X-Sharer-User-Id"

	// DefaultPageSize is used when a list call omits size.
	DefaultPageSize = 10

	// LocalTimestampLayout is the zone-less layout older clients send; it is read as UTC.
	LocalTimestampLayout = "2006-01-02T15:04:05"
)
