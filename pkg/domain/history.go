package domain

import "time"

// HistoryDateLayout is the calendar-date layout used for HistoryEntry.Date.
const HistoryDateLayout = time.DateOnly

// HistoryEntry is the persisted record of one past expansion.
type HistoryEntry struct {
	Original string `json:"original"`
	Expanded string `json:"expanded"`
	// Date is the local calendar date of insertion, formatted as YYYY-MM-DD.
	Date string `json:"date"`
	Safe bool   `json:"safe"`
}

// NewHistoryEntry derives a history entry from a successful expansion. The
// original URL is taken from the result, the date from now in its own location.
func NewHistoryEntry(res *ExpansionResult, now time.Time) HistoryEntry {
	return HistoryEntry{
		Original: res.OriginalURL,
		Expanded: res.ExpandedURL,
		Date:     now.Format(HistoryDateLayout),
		Safe:     res.IsSafe,
	}
}
