package region

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

var apostropheReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"`", "'",
	"´", "'",
)

// NormalizeName standardizes a region name for matching by:
//  1. Trimming whitespace
//  2. Applying Unicode NFKC normalization (census and boundary sources
//     disagree on encodings of the same name)
//  3. Folding apostrophe variants to the ASCII apostrophe
//  4. Collapsing multiple spaces into single spaces
func NormalizeName(name string) string {
	name = norm.NFKC.String(strings.TrimSpace(name))
	name = apostropheReplacer.Replace(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return name
}

// AliasTable maps census-side region names to their boundary-side spelling.
// Lookups happen on normalized names.
type AliasTable map[string]string

// DefaultAliases carries the known corrections. Both entries are artifacts of
// the census sheet's label-column bucketing, which rewrites punctuation in
// region anchor rows along with the age-group rows.
func DefaultAliases() AliasTable {
	return AliasTable{
		"Hawketos Bay Region":       "Hawke's Bay Region",
		"ManawatutoWanganui Region": "Manawatu-Wanganui Region",
	}
}

// LoadAliases returns DefaultAliases merged with entries from an optional
// YAML file (a flat string-to-string map). File entries win on conflict;
// an empty path returns the defaults alone.
func LoadAliases(path string) (AliasTable, error) {
	table := DefaultAliases()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: read alias file %s", path)
	}

	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, eris.Wrapf(err, "region: parse alias file %s", path)
	}
	for from, to := range extra {
		table[NormalizeName(from)] = to
	}

	return table, nil
}

// Apply resolves a census region name to its boundary-side form: normalize,
// then follow at most one alias hop.
func (a AliasTable) Apply(name string) string {
	n := NormalizeName(name)
	if to, ok := a[n]; ok {
		return NormalizeName(to)
	}
	return n
}
