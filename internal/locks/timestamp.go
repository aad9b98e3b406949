package locks

import (
	"fmt"
	"strings"
	"time"
)

// createdLayouts are tried in order after the zone suffix is cut. Terraform
// writes either Go's default time.String form ("2025-11-27 21:45:08.391889026
// +0000 UTC") or RFC 3339 inside the JSON Info document.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseCreated parses a lock creation timestamp as UTC. Everything from the
// first " +" on is ignored.
func ParseCreated(s string) (time.Time, error) {
	trimmed, _, _ := strings.Cut(strings.TrimSpace(s), " +")
	for _, layout := range createdLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised lock timestamp %q", s)
}
