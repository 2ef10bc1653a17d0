/*
reason.go - Legacy reason-string classification

PURPOSE:
  Older clients (and the bulk import pipeline) describe stock adjustments
  with free-text reasons like "Stock In", "Initial Stock" or
  "Penyesuaian Modal (HPP) Maret". Internally every entry carries a tagged
  EventKind; this file is the only place where reason text is parsed, at the
  API boundary. Downstream code never sniffs strings.

MATCHING RULES (kept from the legacy data):
  - "stock in" / "initial stock": case-insensitive whole-string compare
  - capital adjustment: prefix compare on "Penyesuaian Modal (HPP)"
  - anything else: a plain correction with no accounting impact

SEE ALSO:
  - types.go: EventKind definitions
  - ../journal/derive.go: Consumes kinds, never reason text
*/
package ledger

import (
	"fmt"
	"strings"
)

// CapitalAdjustmentPrefix is the legacy tag that marks a capital (HPP)
// adjustment in free-text reasons.
const CapitalAdjustmentPrefix = "Penyesuaian Modal (HPP)"

// ClassifyReason maps a free-text adjustment reason onto an EventKind.
// The original text is preserved as the entry's note.
func ClassifyReason(reason string) EventKind {
	trimmed := strings.TrimSpace(reason)
	switch strings.ToLower(trimmed) {
	case "stock in":
		return KindStockIn
	case "initial stock":
		return KindInitialStock
	}
	if strings.HasPrefix(trimmed, CapitalAdjustmentPrefix) {
		return KindCapitalAdjustment
	}
	return KindCorrection
}

// DisplayReason renders the audit text for an entry: the note when one was
// written, otherwise a default derived from the kind.
func DisplayReason(e Entry) string {
	if e.Note != "" {
		return e.Note
	}
	switch e.Kind {
	case KindInitialStock:
		return "Initial Stock"
	case KindStockIn:
		return "Stock In"
	case KindCapitalAdjustment:
		return CapitalAdjustmentPrefix
	case KindSale:
		return fmt.Sprintf("Sale (%s)", e.Channel)
	case KindCancelledSale:
		return fmt.Sprintf("Cancelled Sale (%s)", e.Channel)
	default:
		return "Adjustment"
	}
}
