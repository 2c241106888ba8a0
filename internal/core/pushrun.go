package core

// Direction is the state of a PushRun.
type Direction int

const (
	// Empty is a run that holds no items yet.
	Empty Direction = iota
	// Forward runs are anchored at a non-negative position and grow towards
	// the end of the array.
	Forward
	// Backward runs are anchored at the end of the array (no position) or
	// at a negative position.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "empty"
	}
}

// PushRun is a sequence of array adds on one location that collapse into a
// single $push with $each and, optionally, $position. Items are kept in final
// document order.
type PushRun struct {
	Direction   Direction
	Position    int
	HasPosition bool
	Items       []any
}

// StartRun opens a run holding value. Adds at "-" start a run without a
// position.
func StartRun(index Index, value any) PushRun {
	run := PushRun{Items: []any{value}}
	if index.IsPosition() {
		run.Position = index.N
		run.HasPosition = true
	}
	if !run.HasPosition || run.Position < 0 {
		run.Direction = Backward
	} else {
		run.Direction = Forward
	}
	return run
}

// Admit tries to merge an add at index into the run. It returns the grown
// run and true, or the unchanged run and false when the add cannot be merged
// and the run has to be closed.
func (r PushRun) Admit(index Index, value any) (PushRun, bool) {
	if r.Direction == Empty {
		return StartRun(index, value), true
	}

	start, ok := r.offset(index)
	if !ok {
		return r, false
	}

	items := make([]any, 0, len(r.Items)+1)
	at := start
	if r.Direction == Backward {
		at = len(r.Items) - start
	}
	items = append(items, r.Items[:at]...)
	items = append(items, value)
	items = append(items, r.Items[at:]...)

	r.Items = items
	return r, true
}

// offset returns how far from the anchor an add at index falls, counted in
// the run's direction.
func (r PushRun) offset(index Index) (int, bool) {
	switch r.Direction {
	case Forward:
		if !index.IsPosition() || index.N < 0 {
			return 0, false
		}
	case Backward:
		if index.IsField() || (index.IsPosition() && index.N >= 0) {
			return 0, false
		}
	default:
		return 0, false
	}

	base := 0
	if r.HasPosition {
		base = abs(r.Position)
	}
	target := 0
	if index.IsPosition() {
		target = abs(index.N)
	}

	start := target - base
	if start < 0 || start > len(r.Items) {
		return 0, false
	}
	return start, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
