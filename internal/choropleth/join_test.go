package choropleth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/censusmap/internal/census"
	"github.com/sells-group/censusmap/internal/region"
)

func vertsFor(names ...string) []region.Vertex {
	var verts []region.Vertex
	for path, name := range names {
		for seq := 0; seq < 5; seq++ {
			verts = append(verts, region.Vertex{
				Path: path, Seq: seq,
				Lng: 174.0 + float64(seq)*0.01, Lat: -41.0,
				Region: name,
			})
		}
	}
	return verts
}

func regionsFor(areas map[string]float64) []region.Region {
	var regions []region.Region
	for name, area := range areas {
		regions = append(regions, region.Region{Name: name, AreaKm2: area})
	}
	return regions
}

func totalsFor(names ...string) []census.RegionTotals {
	var totals []census.RegionTotals
	for _, name := range names {
		totals = append(totals, census.RegionTotals{
			Region:     name,
			Male2006:   1000,
			Female2006: 1100,
			Male2013:   1200,
			Female2013: 1300,
		})
	}
	return totals
}

func TestJoin_FullMatch(t *testing.T) {
	verts := vertsFor("Northland Region", "Auckland Region")
	regions := regionsFor(map[string]float64{
		"Northland Region": 100,
		"Auckland Region":  50,
	})
	totals := totalsFor("Northland Region", "Auckland Region")

	rows, err := Join(verts, regions, totals, Options{})
	require.NoError(t, err)
	require.Len(t, rows, len(verts), "every vertex survives the join")

	for _, r := range rows {
		require.True(t, r.Matched, "region %s", r.Region)
		switch r.Region {
		case "Northland Region":
			assert.Equal(t, 100.0, r.AreaKm2)
			assert.Equal(t, 10.0, r.MaleDensity2006)
			assert.Equal(t, 13.0, r.FemaleDensity2013)
		case "Auckland Region":
			assert.Equal(t, 50.0, r.AreaKm2)
			assert.Equal(t, 20.0, r.MaleDensity2006)
			assert.Equal(t, 26.0, r.FemaleDensity2013)
		}
		assert.False(t, math.IsNaN(r.MaleDensity2013))
		assert.False(t, math.IsNaN(r.FemaleDensity2006))
	}
	assert.Empty(t, UnmatchedRegions(rows))
}

func TestJoin_AliasBridgesMangledNames(t *testing.T) {
	// The census side arrives with the bucketed spelling; the boundary side
	// carries the real name. The default aliases must reconnect them.
	verts := vertsFor("Hawke's Bay Region")
	regions := regionsFor(map[string]float64{"Hawke's Bay Region": 200})
	totals := totalsFor("Hawketos Bay Region")

	rows, err := Join(verts, regions, totals, Options{})
	require.NoError(t, err)
	for _, r := range rows {
		assert.True(t, r.Matched)
		assert.Equal(t, 5.0, r.MaleDensity2006)
	}
}

func TestJoin_MismatchFailsLoudly(t *testing.T) {
	verts := vertsFor("Northland Region", "West Coast Region")
	regions := regionsFor(map[string]float64{
		"Northland Region":  100,
		"West Coast Region": 300,
	})
	// Census has Northland plus a region with no polygon; West Coast has no counts.
	totals := totalsFor("Northland Region", "Chatham Islands Territory")

	_, err := Join(verts, regions, totals, Options{})
	require.Error(t, err)

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"Chatham Islands Territory"}, mismatch.MissingGeometry)
	assert.Equal(t, []string{"West Coast Region"}, mismatch.MissingCounts)
	assert.Contains(t, err.Error(), "Chatham Islands Territory")
	assert.Contains(t, err.Error(), "West Coast Region")
}

func TestJoin_AllowUnmatchedDegradesToMissing(t *testing.T) {
	verts := vertsFor("Northland Region", "West Coast Region")
	regions := regionsFor(map[string]float64{
		"Northland Region":  100,
		"West Coast Region": 300,
	})
	totals := totalsFor("Northland Region")

	rows, err := Join(verts, regions, totals, Options{AllowUnmatched: true})
	require.NoError(t, err)
	require.Len(t, rows, len(verts))

	for _, r := range rows {
		if r.Region == "West Coast Region" {
			assert.False(t, r.Matched)
			assert.True(t, math.IsNaN(r.MaleDensity2006))
			assert.True(t, math.IsNaN(r.FemaleDensity2013))
		} else {
			assert.True(t, r.Matched)
			assert.Equal(t, 10.0, r.MaleDensity2006)
		}
	}
	assert.Equal(t, []string{"West Coast Region"}, UnmatchedRegions(rows))
}

func TestJoin_DuplicateAliasTarget(t *testing.T) {
	verts := vertsFor("Auckland Region")
	regions := regionsFor(map[string]float64{"Auckland Region": 50})
	totals := totalsFor("Auckland Region", "Akl Region")

	aliases := region.DefaultAliases()
	aliases["Akl Region"] = "Auckland Region"

	_, err := Join(verts, regions, totals, Options{Aliases: aliases})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestJoin_NonPositiveArea(t *testing.T) {
	verts := vertsFor("Northland Region")
	regions := regionsFor(map[string]float64{"Northland Region": 0})
	totals := totalsFor("Northland Region")

	_, err := Join(verts, regions, totals, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive area")
}

func TestJoin_MissingCountsStayMissing(t *testing.T) {
	verts := vertsFor("Northland Region")
	regions := regionsFor(map[string]float64{"Northland Region": 100})
	totals := []census.RegionTotals{{
		Region:     "Northland Region",
		Male2006:   math.NaN(),
		Female2006: 1100,
		Male2013:   1200,
		Female2013: 1300,
	}}

	rows, err := Join(verts, regions, totals, Options{})
	require.NoError(t, err)
	for _, r := range rows {
		assert.True(t, r.Matched)
		assert.True(t, math.IsNaN(r.MaleDensity2006), "missing count stays missing")
		assert.Equal(t, 11.0, r.FemaleDensity2006, "other metrics unaffected")
	}
}

func TestDensity(t *testing.T) {
	assert.Equal(t, 10.0, Density(1000, 100))
	assert.True(t, math.IsNaN(Density(math.NaN(), 100)))
	assert.True(t, math.IsNaN(Density(1000, 0)))
	assert.True(t, math.IsNaN(Density(1000, -5)))
}
