package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/solatis/vizcore/internal/types"
)

const parquetBatch = 256

// ReadParquet decodes a Parquet file into a Dataset.
// Column order follows the file schema; nested groups are not flattened.
func ReadParquet(r io.ReaderAt) (types.Dataset, error) {
	reader := parquet.NewGenericReader[map[string]any](r)
	defer reader.Close()

	var columns []string
	for _, field := range reader.Schema().Fields() {
		columns = append(columns, field.Name())
	}

	var records []map[string]any
	batch := make([]map[string]any, parquetBatch)
	for {
		n, err := reader.Read(batch)
		for i := 0; i < n; i++ {
			records = append(records, batch[i])
			batch[i] = nil
		}
		if checkErr := checkRows(len(records)); checkErr != nil {
			return types.Dataset{}, checkErr
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.Dataset{}, fmt.Errorf("read parquet: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return FromRecords(records, columns)
}
