// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/msme-risk/pkg/constants"
)

// Round rounds a value to two decimals, the precision used for covariate means.
func Round(val float64) float64 {
	return RoundTo(val, constants.MeanPlaces)
}

// RoundTo rounds a value to the given number of decimals. Ties go to the
// even neighbour, matching the tabular tooling the figures are checked against.
func RoundTo(val float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(val*scale) / scale
}

// CalculatePercentage calculates what percentage value is of total.
// A zero total yields zero instead of NaN.
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// Mean returns the arithmetic mean of values, or zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}
