package billing

import (
	"fmt"
	"strconv"
	"time"
)

// nextDocNumber derives the next invoice number from the most recent one.
// The trailing numeric suffix is incremented with its prefix and zero padding
// preserved: "INV-007" becomes "INV-008", "42" becomes "43". When there is no
// prior number or it has no numeric suffix, a timestamp-derived number is used.
func nextDocNumber(prev string, now time.Time) string {
	start := len(prev)
	for start > 0 && prev[start-1] >= '0' && prev[start-1] <= '9' {
		start--
	}

	suffix := prev[start:]
	if suffix == "" {
		return fmt.Sprintf("INV-%s", now.UTC().Format("20060102150405"))
	}

	n, err := strconv.Atoi(suffix)
	if err != nil {
		// Suffix longer than an int can hold, give up on the sequence
		return fmt.Sprintf("INV-%s", now.UTC().Format("20060102150405"))
	}

	return fmt.Sprintf("%s%0*d", prev[:start], len(suffix), n+1)
}
