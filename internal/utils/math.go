package utils

import "math"

// Round rounds value to the given number of decimal places, with halves
// rounded toward positive infinity (so -0.25 becomes -0.2 at one place).
func Round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(value*scale+0.5) / scale
}

// Clamp restricts value to the closed interval [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Min(math.Max(value, lo), hi)
}
