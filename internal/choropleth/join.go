package choropleth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/censusmap/internal/census"
	"github.com/sells-group/censusmap/internal/region"
)

// Row is one flattened-geometry vertex carrying the joined census attributes
// and derived densities. Unmatched vertices keep NaN densities and
// Matched=false; they are never dropped, so output length always equals the
// input vertex count.
type Row struct {
	region.Vertex
	AreaKm2 float64
	Matched bool

	MaleDensity2006   float64
	FemaleDensity2006 float64
	MaleDensity2013   float64
	FemaleDensity2013 float64
}

// MismatchError reports region-name sets that failed to reconcile after
// alias correction. Both directions of the symmetric difference are listed.
type MismatchError struct {
	MissingGeometry []string // census regions with no boundary polygon
	MissingCounts   []string // boundary regions with no census counts
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.MissingGeometry) > 0 {
		parts = append(parts, fmt.Sprintf("census regions without geometry: %s", strings.Join(e.MissingGeometry, ", ")))
	}
	if len(e.MissingCounts) > 0 {
		parts = append(parts, fmt.Sprintf("boundary regions without counts: %s", strings.Join(e.MissingCounts, ", ")))
	}
	return "choropleth: region join mismatch: " + strings.Join(parts, "; ")
}

// Options controls the join.
type Options struct {
	Aliases region.AliasTable

	// AllowUnmatched degrades join mismatches from an error to a warning,
	// leaving the affected vertices with missing densities.
	AllowUnmatched bool
}

// Join aligns per-region census totals to the flattened geometry by region
// name and derives population densities. Census names pass through the alias
// table; both name sets must then match exactly unless AllowUnmatched is set.
func Join(verts []region.Vertex, regions []region.Region, totals []census.RegionTotals, opts Options) ([]Row, error) {
	if opts.Aliases == nil {
		opts.Aliases = region.DefaultAliases()
	}

	areas := make(map[string]float64, len(regions))
	for _, r := range regions {
		areas[region.NormalizeName(r.Name)] = r.AreaKm2
	}

	counts := make(map[string]census.RegionTotals, len(totals))
	for _, t := range totals {
		name := opts.Aliases.Apply(t.Region)
		if _, dup := counts[name]; dup {
			return nil, eris.Errorf("choropleth: census region %q resolves to duplicate name %q", t.Region, name)
		}
		counts[name] = t
	}

	if err := reconcile(areas, counts, opts.AllowUnmatched); err != nil {
		return nil, err
	}

	// Area must be positive for every region that will receive a density.
	for name := range counts {
		if area, ok := areas[name]; ok && area <= 0 {
			return nil, eris.Errorf("choropleth: region %q has non-positive area %f", name, area)
		}
	}

	rows := make([]Row, 0, len(verts))
	for _, v := range verts {
		name := region.NormalizeName(v.Region)
		row := Row{Vertex: v, AreaKm2: areas[name]}
		if t, ok := counts[name]; ok {
			row.Matched = true
			row.MaleDensity2006 = Density(t.Male2006, row.AreaKm2)
			row.FemaleDensity2006 = Density(t.Female2006, row.AreaKm2)
			row.MaleDensity2013 = Density(t.Male2013, row.AreaKm2)
			row.FemaleDensity2013 = Density(t.Female2013, row.AreaKm2)
		} else {
			row.MaleDensity2006 = missing
			row.FemaleDensity2006 = missing
			row.MaleDensity2013 = missing
			row.FemaleDensity2013 = missing
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// reconcile compares the two region-name sets and reports their symmetric
// difference. No hard-coded patching: a mismatch either fails the run or is
// explicitly allowed through as missing data.
func reconcile(areas map[string]float64, counts map[string]census.RegionTotals, allow bool) error {
	var missingGeometry, missingCounts []string
	for name := range counts {
		if _, ok := areas[name]; !ok {
			missingGeometry = append(missingGeometry, name)
		}
	}
	for name := range areas {
		if _, ok := counts[name]; !ok {
			missingCounts = append(missingCounts, name)
		}
	}
	if len(missingGeometry) == 0 && len(missingCounts) == 0 {
		return nil
	}

	sort.Strings(missingGeometry)
	sort.Strings(missingCounts)
	err := &MismatchError{MissingGeometry: missingGeometry, MissingCounts: missingCounts}
	if !allow {
		return err
	}

	zap.L().Warn("choropleth: proceeding despite region join mismatch",
		zap.Strings("missing_geometry", missingGeometry),
		zap.Strings("missing_counts", missingCounts),
	)
	return nil
}
