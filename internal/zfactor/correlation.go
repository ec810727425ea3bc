package zfactor

import (
	"fmt"
	"strings"
)

// Correlation selects the empirical equation used to compute Z.
type Correlation int

const (
	// HallYarborough is the Hall-Yarborough (1973) correlation.
	HallYarborough Correlation = iota
	// DranchukAboukassem is the Dranchuk-Abou-Kassem (1975) correlation.
	DranchukAboukassem
)

// String returns the display name of the correlation.
func (c Correlation) String() string {
	switch c {
	case HallYarborough:
		return "Hall-Yarborough"
	case DranchukAboukassem:
		return "Dranchuk-Abou-Kassem"
	default:
		return fmt.Sprintf("Correlation(%d)", int(c))
	}
}

// Key returns the short registry key of the correlation ("hy" or "dak").
// Unknown correlations return an empty string.
func (c Correlation) Key() string {
	switch c {
	case HallYarborough:
		return "hy"
	case DranchukAboukassem:
		return "dak"
	default:
		return ""
	}
}

// ParseCorrelation resolves a user-supplied name to a Correlation.
// It accepts the short keys ("hy", "dak") as well as the long names with or
// without separators, case-insensitively.
func ParseCorrelation(name string) (Correlation, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)

	switch normalized {
	case "hy", "hallyarborough":
		return HallYarborough, nil
	case "dak", "dranchukaboukassem":
		return DranchukAboukassem, nil
	}
	return 0, fmt.Errorf("unknown correlation %q (expected hy or dak)", name)
}
