package ir

import "strconv"

// Round rounds x to the given number of decimal places.
//
// Rounding is decided on the exact binary value of x with ties to even, so
// 0.35 (stored just below 0.35) rounds to 0.3 and 6.25 rounds to 6.2.
func Round(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
