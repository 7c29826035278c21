package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/vizcore/internal/types"
)

func TestParse_Forms(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{
			name: "bare list",
			data: `
- range: cell
  operator: ">"
  value: 3
  color: {background: red}
- range: row
  operator: in
  value: [a, b]
  target: {name: status}
  color: {textColor: blue}
`,
			want: 2,
		},
		{
			name: "wrapped",
			data: `
rules:
  - range: cell
    operator: is null
    color: {background: grey}
`,
			want: 1,
		},
		{
			name: "json",
			data: `[{"range":"cell","operator":"between","value":[1,5],"color":{"background":"green"}}]`,
			want: 1,
		},
		{
			name: "empty",
			data: ``,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			assert.Len(t, rules, tt.want)
		})
	}
}

func TestParse_ValuesEvaluate(t *testing.T) {
	rules, err := Parse([]byte(`
- range: cell
  operator: between
  value: [1, 5]
  color: {background: green}
`))
	require.NoError(t, err)

	style := NewEngine(nil).CellStyle(3, rules)
	assert.Equal(t, "green", style[types.StyleBackgroundColor])
}

func TestParse_Scalar(t *testing.T) {
	_, err := Parse([]byte(`just text`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- {range: cell, operator: '=', value: 1, color: {background: red}}\n"), 0o600))

	rules, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, types.RangeCell, rules[0].Range)
	assert.Equal(t, "red", rules[0].Color.Background)

	_, err = LoadFile(filepath.Join(dir, "rules.txt"))
	assert.True(t, errors.Is(err, types.ErrUnsupportedFormat), "err = %v", err)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
