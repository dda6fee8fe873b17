package census

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAggregate_RoundTripAgainstSheetTotals checks that summing the cleaned
// age-group rows per region reproduces the subtotal rows the cleaner threw
// away.
func TestAggregate_RoundTripAgainstSheetTotals(t *testing.T) {
	sheet := buildSheet()
	table, err := Clean(sheet, syntheticLayout)
	require.NoError(t, err)

	totals := Aggregate(table)
	require.Len(t, totals, 3)

	// Pull the subtotal rows straight from the raw sheet.
	want := map[string][4]float64{}
	data := sheet[syntheticLayout.DataStart:syntheticLayout.DataEnd]
	var current string
	for i, r := range data {
		if i%syntheticLayout.BlockSize == 0 {
			current = BucketLabel(r[0])
			continue
		}
		if !strings.Contains(r[0], "Total") {
			continue
		}
		m06, _ := parseCount(r[1], 0)
		f06, _ := parseCount(r[2], 0)
		m13, _ := parseCount(r[4], 0)
		f13, _ := parseCount(r[5], 0)
		want[current] = [4]float64{m06, f06, m13, f13}
	}

	for _, got := range totals {
		w, ok := want[got.Region]
		require.True(t, ok, "no sheet total for %s", got.Region)
		assert.Equal(t, w[0], got.Male2006, "%s male 2006", got.Region)
		assert.Equal(t, w[1], got.Female2006, "%s female 2006", got.Region)
		assert.Equal(t, w[2], got.Male2013, "%s male 2013", got.Region)
		assert.Equal(t, w[3], got.Female2013, "%s female 2013", got.Region)
	}
}

func TestAggregate_PreservesRegionOrder(t *testing.T) {
	table, err := Clean(buildSheet(), syntheticLayout)
	require.NoError(t, err)

	totals := Aggregate(table)
	names := make([]string, len(totals))
	for i, tt := range totals {
		names[i] = tt.Region
	}
	assert.Equal(t, table.Regions, names)
}

func TestAggregate_MissingCountsPropagate(t *testing.T) {
	table := &Table{
		Regions: []string{"A"},
		Rows: []Row{
			{Region: "A", AgeGroup: "0to4", Male2006: 10, Female2006: math.NaN(), Male2013: 12, Female2013: 11},
			{Region: "A", AgeGroup: "5to9", Male2006: 20, Female2006: 19, Male2013: 22, Female2013: 21},
		},
	}
	totals := Aggregate(table)
	require.Len(t, totals, 1)
	assert.Equal(t, 30.0, totals[0].Male2006)
	assert.True(t, math.IsNaN(totals[0].Female2006), "a missing cell poisons the regional total")
}
