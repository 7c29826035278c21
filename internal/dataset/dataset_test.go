package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/vizcore/internal/types"
)

func TestParseCSV(t *testing.T) {
	input := "region, city ,sales,day\nA,X,10,2024-01-02\nA,Y,20.5,2024-01-03\nB,007,,2024-01-04\n"

	ds, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	wantCols := []types.Column{
		{Name: "region", Type: types.ColumnString},
		{Name: "city", Type: types.ColumnString},
		{Name: "sales", Type: types.ColumnNumeric},
		{Name: "day", Type: types.ColumnDate},
	}
	if diff := cmp.Diff(wantCols, ds.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}

	wantRows := [][]any{
		{"A", "X", 10.0, "2024-01-02"},
		{"A", "Y", 20.5, "2024-01-03"},
		{"B", "007", nil, "2024-01-04"},
	}
	if diff := cmp.Diff(wantRows, ds.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV_ShortRowsAndEmpty(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader("a,b\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{1.0, nil}}, ds.Rows)
	assert.Equal(t, types.ColumnString, ds.Columns[1].Type)

	ds, err = ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ds.Columns)
}

func TestParseJSON_WireForm(t *testing.T) {
	ds, err := ParseJSON([]byte(`{"columns":[{"name":"k"},{"name":"v","type":"STRING"}],"rows":[["a",1],["b",2]]}`))
	require.NoError(t, err)

	assert.Equal(t, types.ColumnString, ds.Columns[0].Type)
	assert.Equal(t, types.ColumnString, ds.Columns[1].Type, "declared type is kept")
	assert.Equal(t, []types.Row{{"k": "a", "v": 1.0}, {"k": "b", "v": 2.0}}, ds.Records())
}

func TestParseJSON_Records(t *testing.T) {
	ds, err := ParseJSON([]byte(`[{"b":1,"a":"x"},{"a":"y","c":true}]`))
	require.NoError(t, err)

	names := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, types.ColumnNumeric, ds.Columns[1].Type)
	assert.Equal(t, [][]any{{"x", 1.0, nil}, {"y", nil, true}}, ds.Rows)
}

func TestParseJSON_Errors(t *testing.T) {
	_, err := ParseJSON([]byte(`{"rows": 3}`))
	assert.Error(t, err)

	ds, err := ParseJSON([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, ds.Rows)
}

func TestFromRecords_TooManyRows(t *testing.T) {
	records := make([]map[string]any, types.MaxDatasetRows+1)
	_, err := FromRecords(records, []string{"a"})
	assert.True(t, errors.Is(err, types.ErrTooManyRows), "err = %v", err)
}

type parquetSale struct {
	Region string  `parquet:"region"`
	Sales  float64 `parquet:"sales"`
}

func TestReadParquet(t *testing.T) {
	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[parquetSale](&buf)
	_, err := writer.Write([]parquetSale{{Region: "A", Sales: 10}, {Region: "B", Sales: 2.5}})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	ds, err := ReadParquet(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	records := ds.Records()
	assert.Equal(t, "A", types.FormatValue(records[0]["region"]))
	assert.Equal(t, 2.5, types.ToFloat(records[1]["sales"]))
	assert.GreaterOrEqual(t, ds.ColumnIndex("sales"), 0)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "d.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("a\n1\n"), 0o600))

	ds, err := LoadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 1)

	jsonPath := filepath.Join(dir, "d.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"a":1}]`), 0o600))
	ds, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 1)

	_, err = LoadFile(filepath.Join(dir, "d.xlsx"))
	assert.True(t, errors.Is(err, types.ErrUnsupportedFormat), "err = %v", err)
}

func TestSort(t *testing.T) {
	rows := []types.Row{
		{"k": "b", "v": 2.0},
		{"k": "a", "v": 3.0},
		{"k": "c", "v": nil},
		{"k": "a", "v": 1.0},
	}

	tests := []struct {
		name   string
		fields []SortField
		want   []string
	}{
		{"asc", []SortField{{Column: "k", Order: SortAsc}}, []string{"a", "a", "b", "c"}},
		{"desc", []SortField{{Column: "k", Order: SortDesc}}, []string{"c", "b", "a", "a"}},
		{"nil first", []SortField{{Column: "v", Order: SortAsc}}, []string{"c", "a", "b", "a"}},
		{"custom", []SortField{{Column: "k", Order: SortCustom, Values: []any{"c", "a"}}}, []string{"c", "a", "a", "b"}},
		{"none", nil, []string{"b", "a", "c", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := Sort(rows, tt.fields)
			got := make([]string, len(sorted))
			for i, r := range sorted {
				got[i] = r["k"].(string)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if rows[0]["k"] != "b" {
		t.Errorf("Sort() reordered its input")
	}
}

func TestSort_MultiField(t *testing.T) {
	rows := []types.Row{
		{"k": "a", "v": 1},
		{"k": "b", "v": 5},
		{"k": "a", "v": 3},
	}
	sorted := Sort(rows, []SortField{{Column: "k", Order: SortAsc}, {Column: "v", Order: SortDesc}})

	got := []float64{types.ToFloat(sorted[0]["v"]), types.ToFloat(sorted[1]["v"]), types.ToFloat(sorted[2]["v"])}
	assert.Equal(t, []float64{3, 1, 5}, got)
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"", SortAsc, false},
		{"desc", SortDesc, false},
		{"Customize", SortCustom, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSortOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSortOrder(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
