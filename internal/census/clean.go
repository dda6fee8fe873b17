package census

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Row is one tidy observation: population counts for a (region, age group)
// pair by sex and census year. Missing counts are NaN.
type Row struct {
	Region     string
	AgeGroup   string
	Male2006   float64
	Female2006 float64
	Male2013   float64
	Female2013 float64
}

// Table is the cleaned census table: one row per (region, age group), plus
// the region names in sheet order.
type Table struct {
	Rows    []Row
	Regions []string
}

// bucketReplacer rewrites punctuation in the label column to the literal word
// "to", turning "15-19" into "15to19". The sheet applies one transform to the
// whole column, so region anchors inherit the rewrite too ("Hawke's Bay
// Region" becomes "Hawketos Bay Region"); the join alias table undoes that.
var bucketReplacer = strings.NewReplacer(
	"–", "to", // en dash
	"-", "to",
	"’", "to", // right single quote
	"'", "to",
)

// BucketLabel normalizes an age-group label into its bucket form.
func BucketLabel(s string) string {
	return bucketReplacer.Replace(strings.TrimSpace(s))
}

// Clean converts the raw sheet rows into a tidy Table following the fixed
// positional layout. Any violated layout assumption aborts with ErrStructural
// instead of silently misaligning region blocks.
func Clean(raw [][]string, layout Layout) (*Table, error) {
	if err := layout.Validate(len(raw)); err != nil {
		return nil, err
	}

	data := raw[layout.DataStart:layout.DataEnd]
	blocks := len(data) / layout.BlockSize

	// Anchor rows: every BlockSize-th row labels the region for its block.
	regions := make([]string, 0, blocks)
	for b := 0; b < blocks; b++ {
		label := BucketLabel(cell(data[b*layout.BlockSize], layout.LabelCol))
		if label == "" {
			return nil, eris.Wrapf(ErrStructural, "empty region anchor at block %d (sheet row %d)", b, layout.DataStart+b*layout.BlockSize)
		}
		regions = append(regions, label)
	}
	names := nameSet(regions)

	// Forward-fill each block's region name down its rows, dropping subtotal
	// rows and leftover structural labels, then coerce counts.
	rows := make([]Row, 0, len(data))
	var badCells int
	for i, r := range data {
		label := BucketLabel(cell(r, layout.LabelCol))
		if isSubtotal(label) || isRegionLabel(label, names) {
			continue
		}
		row := Row{
			Region:   regions[i/layout.BlockSize],
			AgeGroup: label,
		}
		row.Male2006, badCells = parseCount(cell(r, layout.CountCols[0]), badCells)
		row.Female2006, badCells = parseCount(cell(r, layout.CountCols[1]), badCells)
		row.Male2013, badCells = parseCount(cell(r, layout.CountCols[2]), badCells)
		row.Female2013, badCells = parseCount(cell(r, layout.CountCols[3]), badCells)
		rows = append(rows, row)
	}

	if badCells > 0 {
		zap.L().Warn("census: non-numeric count cells coerced to missing",
			zap.Int("cells", badCells),
		)
	}

	return &Table{Rows: rows, Regions: regions}, nil
}

// FilterSubtotals removes rows whose age-group label contains "Total".
// A table with no such rows passes through unchanged.
func FilterSubtotals(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if isSubtotal(r.AgeGroup) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterRegionLabels removes rows whose age-group label exactly matches one
// of the known region names. These are the block anchor rows and any other
// structural leftovers, not age buckets.
func FilterRegionLabels(rows []Row, regions []string) []Row {
	names := nameSet(regions)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if isRegionLabel(r.AgeGroup, names) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func isSubtotal(label string) bool {
	return strings.Contains(label, "Total")
}

func isRegionLabel(label string, names map[string]struct{}) bool {
	_, ok := names[label]
	return ok
}

func nameSet(regions []string) map[string]struct{} {
	names := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		names[r] = struct{}{}
	}
	return names
}

// parseCount coerces a count cell to float64. Thousands separators are
// stripped; anything non-numeric (including the ".." confidentiality marker)
// becomes NaN and increments the bad-cell counter.
func parseCount(s string, bad int) (float64, int) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return math.NaN(), bad + 1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), bad + 1
	}
	return v, bad
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}
