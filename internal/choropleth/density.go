package choropleth

import "math"

// missing marks a derived field with no usable input.
var missing = math.NaN()

// Density is population count per square kilometre. A missing count yields a
// missing density; callers guarantee area > 0 for matched regions.
func Density(count, areaKm2 float64) float64 {
	if math.IsNaN(count) || areaKm2 <= 0 {
		return missing
	}
	return count / areaKm2
}

// UnmatchedRegions returns the distinct region names left without joined
// census attributes, in first-appearance order.
func UnmatchedRegions(rows []Row) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range rows {
		if r.Matched {
			continue
		}
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		names = append(names, r.Region)
	}
	return names
}
