package region

// Vertex is one polygon-boundary point in the flattened geometry table.
// Rendering consumes vertex lists, not nested polygon structures, so the
// polygon collection is re-expressed as one row per boundary vertex.
type Vertex struct {
	// Path identifies the ring this vertex belongs to, unique across the
	// whole collection. Seq preserves vertex order within the ring; shapes
	// self-intersect if it is lost.
	Path int
	Seq  int

	Lng float64
	Lat float64

	// Region re-attaches attributes after flattening discards the
	// structured attribute table.
	Region string
}

// Flatten re-expresses the polygon collection as a row-per-vertex table.
// Every ring (exterior and holes) becomes its own path.
func Flatten(regions []Region) []Vertex {
	var verts []Vertex
	path := 0
	for _, reg := range regions {
		mp := reg.Geom
		for p := 0; p < mp.NumPolygons(); p++ {
			poly := mp.Polygon(p)
			for r := 0; r < poly.NumLinearRings(); r++ {
				coords := poly.LinearRing(r).Coords()
				for seq, c := range coords {
					verts = append(verts, Vertex{
						Path:   path,
						Seq:    seq,
						Lng:    c[0],
						Lat:    c[1],
						Region: reg.Name,
					})
				}
				path++
			}
		}
	}
	return verts
}
