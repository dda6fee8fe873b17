package census

// RegionTotals holds per-region counts summed across age groups. Geometry is
// per-region, so the join consumes these rather than the age-group rows.
type RegionTotals struct {
	Region     string
	Male2006   float64
	Female2006 float64
	Male2013   float64
	Female2013 float64
}

// Aggregate sums counts per region across age groups, preserving the sheet's
// region order. NaN counts propagate into the totals so a region with missing
// cells is visibly missing rather than silently undercounted.
func Aggregate(t *Table) []RegionTotals {
	idx := make(map[string]int, len(t.Regions))
	out := make([]RegionTotals, 0, len(t.Regions))
	for _, name := range t.Regions {
		idx[name] = len(out)
		out = append(out, RegionTotals{Region: name})
	}

	for _, r := range t.Rows {
		i, ok := idx[r.Region]
		if !ok {
			// Rows only ever carry forward-filled anchor names, so this
			// cannot happen for Clean output; guard for hand-built tables.
			idx[r.Region] = len(out)
			out = append(out, RegionTotals{Region: r.Region})
			i = len(out) - 1
		}
		out[i].Male2006 += r.Male2006
		out[i].Female2006 += r.Female2006
		out[i].Male2013 += r.Male2013
		out[i].Female2013 += r.Female2013
	}

	return out
}
