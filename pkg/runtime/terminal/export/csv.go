package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/tabular"
)

// CSVWriter writes the tables of a country run into a directory.
type CSVWriter struct {
	dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

func (w *CSVWriter) Dir() string {
	return w.dir
}

// Export writes every table of the result and returns the written paths.
func (w *CSVWriter) Export(_ context.Context, result *domain.CountryResult) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(result.Tables))
	for _, t := range result.Tables {
		p := filepath.Join(w.dir, t.Name)
		if err := writeFile(p, t); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFile(path string, t domain.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return tabular.WriteCSV(f, t)
}
