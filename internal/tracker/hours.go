package tracker

import (
	"math"
	"strconv"
)

// RoundQuarter rounds h to the nearest quarter hour.
func RoundQuarter(h float64) float64 {
	return math.Round(h*4) / 4
}

// ClampHours raises negative values to zero.
func ClampHours(h float64) float64 {
	if h < 0 {
		return 0
	}
	return h
}

// BurnDown returns the remaining hours after logging logged hours against
// current. This is the caller-side policy applied before
// UpdateRemainingHours, which itself never rounds or clamps.
func BurnDown(current, logged float64) float64 {
	return ClampHours(RoundQuarter(current - logged))
}

// FormatHours renders hours without trailing zeros, e.g. 1.5 or 2.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
