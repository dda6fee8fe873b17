package region

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestShapefile writes a polygon shapefile with one square per region.
// Squares are side x side in the unit of the coordinates.
func createTestShapefile(t *testing.T, nameField string, squares map[string][2]float64, side float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	defer w.Close()

	w.SetFields([]shp.Field{shp.StringField(nameField, 60)})

	row := 0
	for name, origin := range squares {
		x, y := origin[0], origin[1]
		points := [][]shp.Point{{
			{X: x, Y: y},
			{X: x + side, Y: y},
			{X: x + side, Y: y + side},
			{X: x, Y: y + side},
			{X: x, Y: y},
		}}
		w.Write((*shp.Polygon)(shp.NewPolyLine(points)))
		w.WriteAttribute(row, 0, name)
		row++
	}

	return path
}

func TestLoadShapefile_ReadsNamesAndAreas(t *testing.T) {
	// 10 km squares in projected metres.
	path := createTestShapefile(t, "REGC2013_N", map[string][2]float64{
		"Northland Region": {1700000, 6000000},
		"Auckland Region":  {1750000, 5900000},
	}, 10000)

	regions, err := LoadShapefile(path, "REGC2013_N")
	require.NoError(t, err)
	require.Len(t, regions, 2)

	byName := map[string]Region{}
	for _, r := range regions {
		byName[r.Name] = r
	}
	require.Contains(t, byName, "Northland Region")
	require.Contains(t, byName, "Auckland Region")

	for name, r := range byName {
		assert.InDelta(t, 100.0, r.AreaKm2, 1e-6, "%s area", name)
		require.NotNil(t, r.Geom)
		assert.Equal(t, 1, r.Geom.NumPolygons())
		assert.Len(t, r.Geom.FlatCoords(), 10)
	}
}

func TestLoadShapefile_NameFieldCaseInsensitive(t *testing.T) {
	path := createTestShapefile(t, "REGC2013_N", map[string][2]float64{
		"Northland Region": {0, 0},
	}, 100)

	regions, err := LoadShapefile(path, "regc2013_n")
	require.NoError(t, err)
	assert.Len(t, regions, 1)
}

func TestLoadShapefile_MissingNameField(t *testing.T) {
	path := createTestShapefile(t, "REGC2013_N", map[string][2]float64{
		"Northland Region": {0, 0},
	}, 100)

	_, err := LoadShapefile(path, "NO_SUCH_FIELD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"NO_SUCH_FIELD" not found`)
}

func TestLoadShapefile_EmptyName(t *testing.T) {
	path := createTestShapefile(t, "REGC2013_N", map[string][2]float64{
		"": {0, 0},
	}, 100)

	_, err := LoadShapefile(path, "REGC2013_N")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadShapefile_NoPolygonRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("REGC2013_N", 60)})
	w.Write(&shp.Point{X: 1, Y: 2})
	w.WriteAttribute(0, 0, "Somewhere")
	w.Close()

	_, err = LoadShapefile(path, "REGC2013_N")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no polygon records")
}

func TestLoadShapefile_MissingFile(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "nope.shp"), "REGC2013_N")
	require.Error(t, err)
}
