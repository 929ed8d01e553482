package update

import (
	"fmt"
	"strings"
	"time"
)

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseWhen turns palette input into a due date. "none" clears it.
// Layouts without a zone are read in local time.
func parseWhen(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "none", "-":
		return nil, nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized time %q, use 2006-01-02 15:04", raw)
}

func formatDue(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
