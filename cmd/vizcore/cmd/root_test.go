package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/vizcore/internal/core/auth"
	"github.com/solatis/vizcore/internal/core/config"
	"github.com/solatis/vizcore/internal/core/db"
)

// Cobra keeps flag state between runs, so each test drives a different
// subcommand exactly once.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const salesCSV = "region,city,amount\nA,X,10\nA,Y,20\nB,Z,5\n"

func TestStyleCommand(t *testing.T) {
	data := writeFile(t, "sales.csv", salesCSV)
	ruleFile := writeFile(t, "rules.yaml", `
rules:
  - range: cell
    operator: ">"
    value: 15
    color:
      background: red
`)

	out, err := execute(t, "style", "--data", data, "--rules", ruleFile, "--column", "amount", "--log-level", "error")
	require.NoError(t, err)

	var got struct {
		Rows []struct {
			Cells map[string]map[string]string `json:"cells"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Rows, 3)
	assert.Empty(t, got.Rows[0].Cells)
	assert.Equal(t, "red", got.Rows[1].Cells["amount"]["backgroundColor"])
	assert.Empty(t, got.Rows[2].Cells)
}

func TestHierarchyCommand(t *testing.T) {
	data := writeFile(t, "sales.csv", salesCSV)

	out, err := execute(t, "hierarchy", "--data", data, "--group", "region,city", "--aggregate", "amount")
	require.NoError(t, err)

	var got []struct {
		Name     string    `json:"name"`
		Value    []float64 `json:"value"`
		Children []struct {
			Path string `json:"path"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, []float64{30}, got[0].Value)
	require.Len(t, got[0].Children, 2)
	assert.Equal(t, "A/Y", got[0].Children[1].Path)
	assert.Equal(t, []float64{5}, got[1].Value)
}

func TestLintCommand(t *testing.T) {
	ruleFile := writeFile(t, "rules.yaml", `
- range: cell
  operator: between
  value: [1, 5]
  color: {background: green}
- range: cell
  operator: "="
  value: 3
`)

	out, err := execute(t, "lint", ruleFile)
	if err == nil {
		t.Fatal("lint error = nil, want rule error")
	}
	if !strings.Contains(out, "rule 1: error: no color block") {
		t.Errorf("lint output = %q, want the missing color block reported", out)
	}
	if strings.Contains(out, "rule 0") {
		t.Errorf("lint output = %q, want rule 0 clean", out)
	}
}

func TestKeygenCommand(t *testing.T) {
	const secretID = "0123456789abcdef0123456789abcdef"
	t.Setenv("VZ_HMAC_SECRET", secretID+":dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w")

	out, err := execute(t, "keygen", "--workspace", "sales")
	require.NoError(t, err)

	var key string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "API key (shown once): "); ok {
			key = rest
		}
	}
	gotID, _, err := auth.ParseAPIKey(key)
	require.NoError(t, err)
	assert.Equal(t, secretID, gotID)
	assert.Contains(t, out, "workspace: sales")

	secrets, err := config.HMACSecrets()
	require.NoError(t, err)
	hash := auth.ComputeHMAC(secrets[secretID], key)
	assert.Contains(t, out, "hash: "+hex.EncodeToString(hash))
}

func TestTablesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	conn, err := db.Open(t.Context(), "sqlite://"+path, db.Pool{})
	require.NoError(t, err)
	conn.MustExec(`CREATE TABLE sales (region TEXT, amount INTEGER)`)
	require.NoError(t, conn.Close())

	out, err := execute(t, "tables", "--db-url", "sqlite://"+path, "sales")
	require.NoError(t, err)
	assert.Equal(t, "region\tSTRING\namount\tNUMERIC\n", out)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{"json", config.LogConfig{Level: "info", Format: config.LogFormatJSON}, false},
		{"text debug", config.LogConfig{Level: "debug", Format: config.LogFormatText}, false},
		{"bad level", config.LogConfig{Level: "loud", Format: config.LogFormatJSON}, true},
		{"bad format", config.LogConfig{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLogger(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("newLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
