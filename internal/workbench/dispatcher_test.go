package workbench

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/solatis/vizcore/internal/charts"
	"github.com/solatis/vizcore/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func treemapSpec() Spec {
	return Spec{
		Kind: charts.KindTreemap,
		Dataset: types.Dataset{
			Columns: []types.Column{{Name: "region"}, {Name: "SUM(sales)"}},
			Rows:    [][]any{{"A", 1}, {"B", 2}},
		},
		Config: charts.MustParseConfig(`{"datas": [
			{"type": "group", "rows": [{"colName": "region"}]},
			{"type": "aggregate", "rows": [{"colName": "sales", "aggregate": "SUM"}]}
		]}`),
	}
}

func TestDispatcher_SwitchAndGet(t *testing.T) {
	d := NewDispatcher(nil)
	assert.Equal(t, DefaultContainerID, d.Current())

	require.NoError(t, d.Switch("a", treemapSpec()))
	require.NoError(t, d.Switch("b", Spec{Kind: charts.KindTable}))
	assert.Equal(t, types.ContainerID("b"), d.Current())
	assert.Equal(t, 2, d.Len())

	spec, err := d.Get("a")
	require.NoError(t, err)
	assert.Equal(t, charts.KindTreemap, spec.Kind)

	// Switching back replaces the spec but keeps creation order.
	require.NoError(t, d.Switch("a", Spec{Kind: charts.KindTable}))
	assert.Equal(t, 2, d.Len())
	spec, _ = d.Get("a")
	assert.Equal(t, charts.KindTable, spec.Kind)

	_, err = d.Get("missing")
	assert.True(t, errors.Is(err, types.ErrContainerNotFound), "err = %v", err)
}

func TestDispatcher_Containers(t *testing.T) {
	d := NewDispatcher(nil)
	style := types.Style{"width": "400px", "height": "300px"}

	views, err := d.Show("a", treemapSpec(), style)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Shown)

	views, err = d.Show("b", Spec{Kind: "pie"}, style)
	require.NoError(t, err)
	require.Len(t, views, 2)

	a, b := views[0], views[1]
	assert.Equal(t, types.ContainerID("a"), a.ID)
	assert.False(t, a.Shown)
	assert.Equal(t, "translate(-9999px, -9999px)", a.Style["transform"])
	assert.Equal(t, "absolute", a.Style["position"])
	assert.Equal(t, "400px", a.Style["width"])
	assert.IsType(t, charts.TreemapOption{}, a.Option)
	assert.Empty(t, a.Err)

	assert.True(t, b.Shown)
	assert.Equal(t, "none", b.Style["transform"])
	assert.Equal(t, "relative", b.Style["position"])
	assert.Nil(t, b.Option)
	assert.Contains(t, b.Err, "unknown chart kind")

	assert.Equal(t, types.Style{"width": "400px", "height": "300px"}, style, "caller style untouched")
}

func TestDispatcher_Remove(t *testing.T) {
	d := NewDispatcher(nil)
	for _, id := range []types.ContainerID{"a", "b", "c"} {
		require.NoError(t, d.Switch(id, Spec{Kind: charts.KindTable}))
	}

	require.NoError(t, d.Remove("b"))
	assert.Equal(t, types.ContainerID("c"), d.Current(), "non-current removal keeps current")

	require.NoError(t, d.Remove("c"))
	assert.Equal(t, types.ContainerID("a"), d.Current())

	require.NoError(t, d.Remove("a"))
	assert.Equal(t, DefaultContainerID, d.Current())
	assert.Equal(t, 0, d.Len())

	err := d.Remove("a")
	assert.True(t, errors.Is(err, types.ErrContainerNotFound), "err = %v", err)
}

func TestDispatcher_Dispose(t *testing.T) {
	d := NewDispatcher(nil)
	require.NoError(t, d.Switch("a", Spec{Kind: charts.KindTable}))
	d.Dispose()
	d.Dispose()

	assert.Equal(t, 0, d.Len())
	assert.Equal(t, DefaultContainerID, d.Current())

	tests := []struct {
		name string
		call func() error
	}{
		{"Switch", func() error { return d.Switch("a", Spec{}) }},
		{"Get", func() error { _, err := d.Get("a"); return err }},
		{"Containers", func() error { _, err := d.Containers(nil); return err }},
		{"Remove", func() error { return d.Remove("a") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, types.ErrDispatcherDisposed) {
				t.Errorf("%s() error = %v, want %v", tt.name, err, types.ErrDispatcherDisposed)
			}
		})
	}
}

func TestDispatcher_Isolation(t *testing.T) {
	first := NewDispatcher(nil)
	second := NewDispatcher(nil)
	require.NoError(t, first.Switch("a", Spec{Kind: charts.KindTable}))

	assert.Equal(t, 0, second.Len())
	assert.Equal(t, DefaultContainerID, second.Current())
}

func TestDispatcher_Concurrent(t *testing.T) {
	d := NewDispatcher(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := types.ContainerID(fmt.Sprintf("c%d", i))
			for j := 0; j < 20; j++ {
				_ = d.Switch(id, Spec{Kind: charts.KindTable})
				_, _ = d.Containers(types.Style{})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, d.Len())
	views, err := d.Containers(nil)
	require.NoError(t, err)

	shown := 0
	for _, v := range views {
		if v.Shown {
			shown++
		}
	}
	assert.Equal(t, 1, shown, "exactly one container is shown")
}

func TestVisibilityStyle(t *testing.T) {
	tests := []struct {
		name  string
		shown bool
		in    types.Style
		want  types.Style
	}{
		{"shown", true, types.Style{"width": "10px"}, types.Style{"width": "10px", "transform": "none", "position": "relative"}},
		{"hidden", false, nil, types.Style{"transform": "translate(-9999px, -9999px)", "position": "absolute"}},
		{"overrides caller placement", true, types.Style{"position": "fixed"}, types.Style{"transform": "none", "position": "relative"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibilityStyle(tt.shown, tt.in); !assert.ObjectsAreEqual(tt.want, got) {
				t.Errorf("VisibilityStyle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessions(t *testing.T) {
	s := NewSessions(charts.NewRenderer(nil))

	a := s.Dispatcher("alice")
	assert.Same(t, a, s.Dispatcher("alice"))
	b := s.Dispatcher("bob")
	assert.NotSame(t, a, b)
	assert.Equal(t, []string{"alice", "bob"}, s.Names())

	require.NoError(t, a.Switch("x", Spec{Kind: charts.KindTable}))
	assert.True(t, s.Close("alice"))
	assert.False(t, s.Close("alice"))
	assert.True(t, errors.Is(a.Switch("y", Spec{}), types.ErrDispatcherDisposed))

	_, ok := s.Lookup("alice")
	assert.False(t, ok)

	s.CloseAll()
	assert.Empty(t, s.Names())
	assert.True(t, errors.Is(b.Remove("x"), types.ErrDispatcherDisposed))
}
