// internal/charts/config.go
package charts

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/solatis/vizcore/internal/dataset"
	"github.com/solatis/vizcore/internal/types"
)

/*
 * Chart configuration lookup.
 *
 * A chart config is the JSON document produced by the chart editor:
 *
 *   {
 *     "datas":  [{"key": "dimension", "type": "group", "rows": [<field>...]}, ...],
 *     "styles": [{"key": "label", "rows": [{"key": "font", "value": {...}, "default": {...}}]}]
 *   }
 *
 * Style rows nest: a group row may carry its own rows. A style value is the
 * row's "value", else its "default", else the builder's compiled-in default.
 * Lookups are gjson queries over the raw document; nothing is decoded until
 * a builder asks for it, and every builder resolves its options once.
 */

// Data section types.
const (
	SectionGroup     = "group"
	SectionAggregate = "aggregate"
	SectionInfo      = "info"
	SectionSize      = "size"
	SectionMixed     = "mixed"
)

// Config is a parsed chart configuration document.
type Config struct {
	raw string
}

// ParseConfig validates a chart configuration document.
// An empty document is a valid config with no sections or styles.
func ParseConfig(data []byte) (Config, error) {
	if len(data) == 0 {
		return Config{raw: "{}"}, nil
	}
	if !gjson.ValidBytes(data) {
		return Config{}, fmt.Errorf("%w: not valid JSON", types.ErrInvalidChartConfig)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return Config{}, fmt.Errorf("%w: expected an object", types.ErrInvalidChartConfig)
	}
	return Config{raw: string(data)}, nil
}

// MustParseConfig is ParseConfig for literals known to be valid.
func MustParseConfig(data string) Config {
	c, err := ParseConfig([]byte(data))
	if err != nil {
		panic(err)
	}
	return c
}

// Raw returns the configuration document.
func (c Config) Raw() string {
	if c.raw == "" {
		return "{}"
	}
	return c.raw
}

// Field is one column placed in a data section.
type Field struct {
	UID       string
	ColName   string
	Aggregate string
	Alias     string
	Sort      *dataset.SortField
	raw       gjson.Result
}

// ColumnKey is the dataset column the field reads: "AGG(col)" for
// aggregated fields, the bare column name otherwise.
func (f Field) ColumnKey() string {
	if f.Aggregate != "" {
		return f.Aggregate + "(" + f.ColName + ")"
	}
	return f.ColName
}

// RenderName is the display label: the alias when set, else ColumnKey.
func (f Field) RenderName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.ColumnKey()
}

// Get reads an arbitrary attribute of the field's config.
func (f Field) Get(path string) gjson.Result {
	return f.raw.Get(path)
}

// Section returns the fields of every data section of the given type, in
// document order. A non-empty key further restricts to that section key.
func (c Config) Section(sectionType, key string) []Field {
	var fields []Field
	gjson.Get(c.Raw(), "datas").ForEach(func(_, section gjson.Result) bool {
		if section.Get("type").String() != sectionType {
			return true
		}
		if key != "" && section.Get("key").String() != key {
			return true
		}
		section.Get("rows").ForEach(func(_, row gjson.Result) bool {
			fields = append(fields, parseField(row))
			return true
		})
		return true
	})
	return fields
}

// Fields returns every field of every data section, in document order.
func (c Config) Fields() []Field {
	var fields []Field
	gjson.Get(c.Raw(), "datas.#.rows|@flatten").ForEach(func(_, row gjson.Result) bool {
		fields = append(fields, parseField(row))
		return true
	})
	return fields
}

func parseField(row gjson.Result) Field {
	f := Field{
		UID:       row.Get("uid").String(),
		ColName:   row.Get("colName").String(),
		Aggregate: row.Get("aggregate").String(),
		Alias:     row.Get("alias.name").String(),
		raw:       row,
	}
	if sort := row.Get("sort"); sort.Exists() {
		if order, err := dataset.ParseSortOrder(sort.Get("type").String()); err == nil {
			sf := &dataset.SortField{Column: f.ColumnKey(), Order: order}
			for _, v := range sort.Get("value").Array() {
				sf.Values = append(sf.Values, v.Value())
			}
			f.Sort = sf
		}
	}
	return f
}

// SortFields collects the sort settings of every field, in document order.
func (c Config) SortFields() []dataset.SortField {
	var out []dataset.SortField
	for _, f := range c.Fields() {
		if f.Sort != nil {
			out = append(out, *f.Sort)
		}
	}
	return out
}

// StyleRow finds the style row at path (group keys, outermost first)
// followed by key. The result does not exist when any step is missing.
func (c Config) StyleRow(path []string, key string) gjson.Result {
	query := "styles"
	for _, p := range path {
		query += ".#(key==" + strconv.Quote(p) + ").rows"
	}
	query += ".#(key==" + strconv.Quote(key) + ")"
	return gjson.Get(c.Raw(), query)
}

// Style resolves a style value: the row's value, else its default, else
// fallback. Objects come back as map[string]any and numbers as float64.
func (c Config) Style(path []string, key string, fallback any) any {
	row := c.StyleRow(path, key)
	if v := row.Get("value"); v.Exists() && v.Type != gjson.Null {
		return v.Value()
	}
	if d := row.Get("default"); d.Exists() && d.Type != gjson.Null {
		return d.Value()
	}
	return fallback
}

// StyleValue is Style for a single group.
func (c Config) StyleValue(group, key string, fallback any) any {
	return c.Style([]string{group}, key, fallback)
}

// StyleString resolves a style value as text.
func (c Config) StyleString(path []string, key, fallback string) string {
	switch v := c.Style(path, key, fallback).(type) {
	case string:
		return v
	case nil:
		return fallback
	default:
		return types.FormatValue(v)
	}
}

// StyleNumber resolves a style value as a number; text is parsed.
func (c Config) StyleNumber(path []string, key string, fallback float64) float64 {
	v := c.Style(path, key, nil)
	if v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fallback
		}
		return f
	}
	return types.ToFloat(v)
}

// StyleBool resolves a style value as a boolean.
func (c Config) StyleBool(path []string, key string, fallback bool) bool {
	if b, ok := c.Style(path, key, fallback).(bool); ok {
		return b
	}
	return fallback
}

// StyleObject resolves an object-valued style (fonts, line styles).
// The returned map is a fresh copy merged over fallback.
func (c Config) StyleObject(path []string, key string, fallback map[string]any) map[string]any {
	out := make(map[string]any, len(fallback))
	for k, v := range fallback {
		out[k] = v
	}
	if m, ok := c.Style(path, key, nil).(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// StyleDecode unmarshals the raw JSON of a style value into dst.
// Returns false when the row has neither value nor default.
func (c Config) StyleDecode(path []string, key string, dst any) (bool, error) {
	row := c.StyleRow(path, key)
	src := row.Get("value")
	if !src.Exists() || src.Type == gjson.Null {
		src = row.Get("default")
	}
	if !src.Exists() || src.Type == gjson.Null {
		return false, nil
	}
	if err := json.Unmarshal([]byte(src.Raw), dst); err != nil {
		return true, fmt.Errorf("%w: style %v/%s: %v", types.ErrInvalidChartConfig, path, key, err)
	}
	return true, nil
}

// merge copies src entries into dst and returns dst.
func merge(dst map[string]any, src map[string]any) map[string]any {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
