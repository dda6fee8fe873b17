package census

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ErrStructural indicates the sheet does not match the positional layout the
// cleaner was told to expect. The run must abort rather than misalign.
var ErrStructural = errors.New("census: structural assumption violated")

// Layout names the positional constants of a census sheet. The raw sheet is a
// repeating sequence of fixed-size region blocks: the first row of each block
// carries the region name in the label column, the rest carry one age group
// each with count columns by sex and year.
type Layout struct {
	// DataStart and DataEnd bound the data rows [DataStart, DataEnd),
	// excluding header and footer boilerplate.
	DataStart int
	DataEnd   int

	// BlockSize is the number of rows per region block, anchor row included.
	BlockSize int

	// LabelCol is the column holding region names (on anchor rows) and
	// age-group labels (elsewhere).
	LabelCol int

	// CountCols gives the raw-row positions of male 2006, female 2006,
	// male 2013 and female 2013 counts. The sheet's redundant per-year total
	// columns are dropped by never being referenced here.
	CountCols [4]int
}

// RegionalSummary2013 describes the age/sex table of the Stats NZ 2013 Census
// regional summary workbook: 16 regional-council blocks of 23 rows each after
// the header rows.
var RegionalSummary2013 = Layout{
	DataStart: 8,
	DataEnd:   376,
	BlockSize: 23,
	LabelCol:  0,
	CountCols: [4]int{1, 2, 4, 5},
}

// Validate checks the layout against the raw row count before any slicing.
func (l Layout) Validate(totalRows int) error {
	if l.BlockSize <= 0 {
		return eris.Wrapf(ErrStructural, "block size %d must be positive", l.BlockSize)
	}
	if l.DataStart < 0 || l.DataEnd <= l.DataStart {
		return eris.Wrapf(ErrStructural, "data range [%d, %d) is empty", l.DataStart, l.DataEnd)
	}
	if l.DataEnd > totalRows {
		return eris.Wrapf(ErrStructural, "data range ends at row %d but sheet has %d rows", l.DataEnd, totalRows)
	}
	if n := l.DataEnd - l.DataStart; n%l.BlockSize != 0 {
		return eris.Wrapf(ErrStructural, "%d data rows not divisible by block size %d", n, l.BlockSize)
	}
	return nil
}
