package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/solatis/vizcore/internal/types"
)

// LoadFile reads a dataset, choosing the decoder by file extension:
// .csv, .json or .parquet.
func LoadFile(path string) (types.Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return types.Dataset{}, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return ParseCSV(f)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return types.Dataset{}, fmt.Errorf("read dataset: %w", err)
		}
		return ParseJSON(data)
	case ".parquet":
		f, err := os.Open(path)
		if err != nil {
			return types.Dataset{}, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return ReadParquet(f)
	default:
		return types.Dataset{}, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, ext)
	}
}
