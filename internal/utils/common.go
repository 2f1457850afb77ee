package utils

import (
	"encoding/json"
	"time"
)

func PtrTime(t time.Time) *time.Time { return &t }

func PtrString(s string) *string { return &s }

// MapToJSON renders any value as a JSON string, swallowing marshal errors.
// Logging helper only.
func MapToJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
