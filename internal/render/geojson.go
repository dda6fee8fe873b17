package render

import (
	"math"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/censusmap/internal/choropleth"
)

// Metrics lists the renderable density fields in display order.
var Metrics = []string{
	"male_density_2006",
	"female_density_2006",
	"male_density_2013",
	"female_density_2013",
}

// FeatureCollection rebuilds ring geometry from the flattened vertex table
// and emits one GeoJSON feature per path with the joined attributes. Vertices
// are re-sorted by their ordering index first; emitting them in any other
// order self-intersects the rendered shapes.
func FeatureCollection(rows []choropleth.Row) (*geojson.FeatureCollection, error) {
	if len(rows) == 0 {
		return nil, eris.New("render: no joined rows to render")
	}

	// Group rows by path, preserving first-appearance order.
	byPath := make(map[int][]choropleth.Row)
	var order []int
	for _, r := range rows {
		if _, seen := byPath[r.Path]; !seen {
			order = append(order, r.Path)
		}
		byPath[r.Path] = append(byPath[r.Path], r)
	}

	fc := &geojson.FeatureCollection{}
	for _, path := range order {
		ring := byPath[path]
		sort.Slice(ring, func(i, j int) bool { return ring[i].Seq < ring[j].Seq })

		flat := make([]float64, 0, (len(ring)+1)*2)
		for _, v := range ring {
			flat = append(flat, v.Lng, v.Lat)
		}
		// GeoJSON rings must close on themselves.
		if flat[0] != flat[len(flat)-2] || flat[1] != flat[len(flat)-1] {
			flat = append(flat, flat[0], flat[1])
		}
		if len(flat) < 8 {
			return nil, eris.Errorf("render: path %d has only %d vertices, cannot form a ring", path, len(ring))
		}

		head := ring[0]
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       strconv.Itoa(path),
			Geometry: geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(4326),
			Properties: map[string]interface{}{
				"region":              head.Region,
				"area_km2":            head.AreaKm2,
				"matched":             head.Matched,
				"male_density_2006":   jsonNumber(head.MaleDensity2006),
				"female_density_2006": jsonNumber(head.FemaleDensity2006),
				"male_density_2013":   jsonNumber(head.MaleDensity2013),
				"female_density_2013": jsonNumber(head.FemaleDensity2013),
			},
		})
	}

	return fc, nil
}

// jsonNumber maps missing values to null; NaN is not representable in JSON.
func jsonNumber(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
