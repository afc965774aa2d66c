package services

import (
	"strings"
	"time"

	"floorplan-studio/internal/models"
)

// DisplayTimeLayout is the human-readable layout history timestamps render in.
const DisplayTimeLayout = "Jan 2, 2006, 3:04:05 PM"

var historyTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	// The planner backend stamps files with strftime("%Y%m%d_%H%M%S"), which
	// colon restoration turns into this.
	"20060102:150405",
}

// EntryKind folds the backend's "plan" into generation.
func EntryKind(entry models.HistoryEntry) string {
	if entry.Type == models.EntryKindAnalysis {
		return models.EntryKindAnalysis
	}
	return models.EntryKindGeneration
}

func EntryLabel(entry models.HistoryEntry) string {
	if EntryKind(entry) == models.EntryKindAnalysis {
		return "Floor Plan Analysis"
	}
	return "Generated Plan"
}

// ParseHistoryTimestamp restores the colons the backend swapped for
// underscores and parses the result in loc.
func ParseHistoryTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	restored := strings.ReplaceAll(strings.TrimSpace(raw), "_", ":")
	for _, layout := range historyTimeLayouts {
		if t, err := time.ParseInLocation(layout, restored, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatHistoryTime renders raw for display, or returns it untouched when it
// cannot be parsed.
func FormatHistoryTime(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, ok := ParseHistoryTimestamp(raw, loc)
	if !ok {
		return raw
	}
	return t.In(loc).Format(DisplayTimeLayout)
}
