package region

import (
	"math"

	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// WGS84Proj4 is the target reference system for rendering (EPSG:4326).
const WGS84Proj4 = "+proj=longlat +datum=WGS84 +no_defs"

// NewTransform builds a coordinate transformer between two proj4 definitions.
func NewTransform(srcProj4, dstProj4 string) (proj.Transformer, error) {
	src, err := proj.Parse(srcProj4)
	if err != nil {
		return nil, eris.Wrapf(err, "region: parse source projection %q", srcProj4)
	}
	dst, err := proj.Parse(dstProj4)
	if err != nil {
		return nil, eris.Wrapf(err, "region: parse target projection %q", dstProj4)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, eris.Wrap(err, "region: create transform")
	}
	return t, nil
}

// Reproject transforms every region geometry from the source system to WGS84
// longitude/latitude. Only coordinates change: names and areas (computed in
// the projected system) pass through untouched.
func Reproject(regions []Region, srcProj4 string) ([]Region, error) {
	t, err := NewTransform(srcProj4, WGS84Proj4)
	if err != nil {
		return nil, err
	}

	out := make([]Region, len(regions))
	for i, r := range regions {
		g, err := reprojectMultiPolygon(r.Geom, t)
		if err != nil {
			return nil, eris.Wrapf(err, "region: reproject %s", r.Name)
		}
		out[i] = Region{Name: r.Name, AreaKm2: r.AreaKm2, Geom: g}
	}
	return out, nil
}

func reprojectMultiPolygon(g *geom.MultiPolygon, t proj.Transformer) (*geom.MultiPolygon, error) {
	flat := append([]float64(nil), g.FlatCoords()...)
	for i := 0; i < len(flat); i += 2 {
		x, y, err := t(flat[i], flat[i+1])
		if err != nil {
			return nil, eris.Wrap(err, "transform coordinate")
		}
		if !inLngLatRange(x, y) {
			return nil, eris.Errorf("coordinate (%f, %f) transformed outside lng/lat range", flat[i], flat[i+1])
		}
		flat[i], flat[i+1] = x, y
	}
	return geom.NewMultiPolygonFlat(geom.XY, flat, g.Endss()).SetSRID(4326), nil
}

func inLngLatRange(lng, lat float64) bool {
	return !math.IsNaN(lng) && !math.IsNaN(lat) &&
		lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}
