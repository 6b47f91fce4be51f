package output

import "fmt"

// Default limits for output processing.
// These are tuned for typical LLM context windows and API response sizes.
const (
	// DefaultMaxItems is the default maximum number of items returned per query.
	DefaultMaxItems = 100

	// AbsoluteMaxItems is the absolute maximum items that can be requested.
	// This bounds result sets even when callers request higher limits.
	AbsoluteMaxItems = 1000
)

// TruncationWarning describes a truncated result set.
type TruncationWarning struct {
	Shown   int    `json:"shown"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Truncate limits a slice of items to maxItems.
// Returns the truncated slice and a warning if truncation occurred.
func Truncate[T any](items []T, maxItems int) ([]T, *TruncationWarning) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if maxItems > AbsoluteMaxItems {
		maxItems = AbsoluteMaxItems
	}

	total := len(items)
	if total <= maxItems {
		return items, nil
	}

	return items[:maxItems], &TruncationWarning{
		Shown:   maxItems,
		Total:   total,
		Message: fmt.Sprintf("Output truncated. Showing %d of %d items. Refine your query with node, status, or search filters for complete results.", maxItems, total),
	}
}

// EffectiveLimit calculates the effective item limit from a per-request
// limit. It applies absolute bounds to keep result sets bounded.
func EffectiveLimit(requestLimit int) int {
	if requestLimit <= 0 {
		return DefaultMaxItems
	}
	return min(requestLimit, AbsoluteMaxItems)
}
