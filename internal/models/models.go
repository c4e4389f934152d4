package models

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp accepts RFC 3339 as well as LocalTimestampLayout when decoding.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(LocalTimestampLayout, raw, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", raw)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

// StringPtr and friends keep DTO literals short.
func StringPtr(s string) *string { return &s }

func BoolPtr(b bool) *bool { return &b }

func Int64Ptr(v int64) *int64 { return &v }
