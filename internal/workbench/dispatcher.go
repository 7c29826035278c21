// internal/workbench/dispatcher.go
package workbench

import (
	"fmt"
	"sync"

	"github.com/solatis/vizcore/internal/charts"
	"github.com/solatis/vizcore/internal/types"
)

/*
 * Chart container dispatcher.
 *
 * The chart editor keeps one container per chart it has shown in a session
 * so switching back is instant. Exactly one container is current; the rest
 * stay rendered but are moved off-screen.
 *
 * Lifecycle:
 *   1. Switch(id, spec) stores the spec, creating the container on first use,
 *      and makes it current
 *   2. Containers(style) renders every container in creation order with its
 *      visibility style applied
 *   3. Remove(id) drops one container; Dispose() drops all and closes the
 *      dispatcher
 *
 * A Dispatcher belongs to one editing session. Nothing is global: the
 * service keeps dispatchers in a Sessions table and tests build their own.
 */

// DefaultContainerID is current before any Switch.
const DefaultContainerID types.ContainerID = "frame-container-1"

// Visibility style values.
const (
	hiddenTransform = "translate(-9999px, -9999px)"
	shownPosition   = "relative"
	hiddenPosition  = "absolute"
	styleTransform  = "transform"
	stylePosition   = "position"
	transformNone   = "none"
)

// Spec is what a container renders.
type Spec = charts.Request

// ContainerView is one rendered container.
// Err is set instead of Option when the chart could not be built.
type ContainerView struct {
	ID     types.ContainerID `json:"id"`
	Kind   charts.Kind       `json:"kind"`
	Shown  bool              `json:"shown"`
	Style  types.Style       `json:"style"`
	Option any               `json:"option,omitempty"`
	Err    string            `json:"error,omitempty"`
}

// Dispatcher tracks the chart containers of one editing session.
// Safe for concurrent use.
type Dispatcher struct {
	renderer *charts.Renderer

	mu       sync.Mutex
	current  types.ContainerID
	order    []types.ContainerID
	specs    map[types.ContainerID]Spec
	disposed bool
}

// NewDispatcher creates an empty dispatcher rendering with renderer.
func NewDispatcher(renderer *charts.Renderer) *Dispatcher {
	if renderer == nil {
		renderer = charts.NewRenderer(nil)
	}
	return &Dispatcher{
		renderer: renderer,
		current:  DefaultContainerID,
		specs:    map[types.ContainerID]Spec{},
	}
}

// Switch stores spec under id and makes id current.
func (d *Dispatcher) Switch(id types.ContainerID, spec Spec) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return types.ErrDispatcherDisposed
	}
	if _, ok := d.specs[id]; !ok {
		d.order = append(d.order, id)
	}
	d.specs[id] = spec
	d.current = id
	return nil
}

// Get returns the spec stored under id.
func (d *Dispatcher) Get(id types.ContainerID) (Spec, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return Spec{}, types.ErrDispatcherDisposed
	}
	spec, ok := d.specs[id]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", types.ErrContainerNotFound, id)
	}
	return spec, nil
}

// Current returns the id of the shown container.
func (d *Dispatcher) Current() types.ContainerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Len returns the number of containers.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// Containers renders every container in creation order. The current one
// gets style plus transform none and position relative; the others are
// translated off-screen with position absolute.
func (d *Dispatcher) Containers(style types.Style) ([]ContainerView, error) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return nil, types.ErrDispatcherDisposed
	}
	current := d.current
	ids := append([]types.ContainerID(nil), d.order...)
	specs := make([]Spec, len(ids))
	for i, id := range ids {
		specs[i] = d.specs[id]
	}
	d.mu.Unlock()

	// Render outside the lock.
	views := make([]ContainerView, len(ids))
	for i, id := range ids {
		shown := id == current
		view := ContainerView{
			ID:    id,
			Kind:  specs[i].Kind,
			Shown: shown,
			Style: VisibilityStyle(shown, style),
		}
		option, err := d.renderer.Render(specs[i])
		if err != nil {
			view.Err = err.Error()
		} else {
			view.Option = option
		}
		views[i] = view
	}
	return views, nil
}

// Show is Switch followed by Containers.
func (d *Dispatcher) Show(id types.ContainerID, spec Spec, style types.Style) ([]ContainerView, error) {
	if err := d.Switch(id, spec); err != nil {
		return nil, err
	}
	return d.Containers(style)
}

// Remove drops a container. Removing the current container makes the most
// recently created remaining one current, or DefaultContainerID when none
// remain.
func (d *Dispatcher) Remove(id types.ContainerID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return types.ErrDispatcherDisposed
	}
	if _, ok := d.specs[id]; !ok {
		return fmt.Errorf("%w: %s", types.ErrContainerNotFound, id)
	}
	delete(d.specs, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	if d.current == id {
		d.current = DefaultContainerID
		if n := len(d.order); n > 0 {
			d.current = d.order[n-1]
		}
	}
	return nil
}

// Dispose drops every container. Later calls other than Dispose, Current
// and Len fail with ErrDispatcherDisposed.
func (d *Dispatcher) Dispose() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.disposed = true
	d.order = nil
	d.specs = map[types.ContainerID]Spec{}
	d.current = DefaultContainerID
}

// VisibilityStyle returns a copy of style with the shown or hidden
// placement applied.
func VisibilityStyle(shown bool, style types.Style) types.Style {
	out := make(types.Style, len(style)+2)
	for k, v := range style {
		out[k] = v
	}
	if shown {
		out[styleTransform] = transformNone
		out[stylePosition] = shownPosition
	} else {
		out[styleTransform] = hiddenTransform
		out[stylePosition] = hiddenPosition
	}
	return out
}
