// Package mathx holds the rounding used when printing summaries
package mathx

// Round rounds a float to the nearest "unit" (0.1 for tenth, 0.01 for hundredth, and so on).
// Halves round away from zero.
func Round(x, unit float64) float64 {
	if x < 0 {
		return -Round(-x, unit)
	}
	return float64(int64(x/unit+0.5)) * unit
}

// Percent returns 100*num/den rounded to whole percent, or 0 when den is zero
func Percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return Round(100*num/den, 1)
}
