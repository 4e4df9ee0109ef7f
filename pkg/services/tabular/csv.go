package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

// WriteCSV writes the header row, the tag row and the data rows of a table.
func WriteCSV(w io.Writer, t domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write %s: %w", t.Name, err)
	}
	return nil
}
