package format

import (
	"math"
	"strconv"
)

// FormatZ renders a Z value with a fixed number of decimals. NaN and
// infinities keep their Go spelling so a failed solve stays visible.
func FormatZ(z float64, decimals int) string {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return strconv.FormatFloat(z, 'f', -1, 64)
	}
	return strconv.FormatFloat(z, 'f', decimals, 64)
}

// FormatFloat renders v with the shortest representation that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
