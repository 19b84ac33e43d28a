package catalog

// Handle identifies one end of the price slider.
type Handle int

const (
	HandleLow Handle = iota
	HandleHigh
)

// DragState is the pointer interaction state of the slider.
type DragState int

const (
	DragIdle DragState = iota
	DraggingLow
	DraggingHigh
)

func (d DragState) String() string {
	switch d {
	case DraggingLow:
		return "dragging-low"
	case DraggingHigh:
		return "dragging-high"
	}
	return "idle"
}

// ListenerScope owns the document-wide move/up listeners of a drag.
type ListenerScope interface {
	Attach()
	Detach()
}

// Drag tracks one pointer interaction for clients that drive the slider with a
// pointer. Listeners are attached on entering a dragging state and detached on
// leaving it, so they never outlive the drag. Server-rendered track clicks use
// View.MovePrice instead.
type Drag struct {
	state DragState
	scope ListenerScope
}

func NewDrag(scope ListenerScope) *Drag {
	return &Drag{scope: scope}
}

func (d *Drag) State() DragState {
	return d.state
}

// PointerDown starts dragging h. A press while already dragging is ignored.
func (d *Drag) PointerDown(h Handle) {
	if d.state != DragIdle {
		return
	}
	if h == HandleLow {
		d.state = DraggingLow
	} else {
		d.state = DraggingHigh
	}
	if d.scope != nil {
		d.scope.Attach()
	}
}

// PointerMove applies the dragged handle's clamp rule at the given track position.
// While idle it returns sel unchanged.
func (d *Drag) PointerMove(sel RangeSelector, fraction float64) RangeSelector {
	v := sel.ValueAt(fraction)
	switch d.state {
	case DraggingLow:
		return sel.SetLow(v)
	case DraggingHigh:
		return sel.SetHigh(v)
	}
	return sel
}

// PointerUp ends the drag.
func (d *Drag) PointerUp() {
	if d.state == DragIdle {
		return
	}
	d.state = DragIdle
	if d.scope != nil {
		d.scope.Detach()
	}
}
