package mongopatch

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kenuyx/jsonpatch-to-mongodb/internal/core"
	"github.com/kenuyx/jsonpatch-to-mongodb/patch"
)

// openRun is a $push being grown at a fixed stage.
type openRun struct {
	stage int
	run   core.PushRun
}

// compiler folds JSON Patch operations into update stages. It lives for a
// single translation.
type compiler struct {
	cfg     *config
	stages  []Stage
	cursor  *core.Cursor
	runs    map[string]*openRun
	removed []string
}

func newCompiler(cfg *config) *compiler {
	return &compiler{
		cfg:    cfg,
		stages: []Stage{{}},
		cursor: core.NewCursor(),
		runs:   make(map[string]*openRun),
	}
}

// stage returns the stage at i, appending a new one when i is one past the
// end of the sequence.
func (c *compiler) stage(i int) Stage {
	for len(c.stages) <= i {
		c.cfg.log.V(1).Info("opening stage", "stage", len(c.stages))
		c.stages = append(c.stages, Stage{})
	}
	return c.stages[i]
}

func (c *compiler) compile(ops []patch.Operation) ([]Stage, error) {
	for i, op := range ops {
		if err := c.operation(i, op); err != nil {
			return nil, err
		}
	}
	return c.stages, nil
}

func (c *compiler) operation(i int, op patch.Operation) error {
	switch op.Op {
	case patch.OperationTypeAdd, patch.OperationTypeRemove,
		patch.OperationTypeReplace, patch.OperationTypeMove:
	default:
		return &UnsupportedOperationError{Index: i, Op: op.Op}
	}

	to := core.ParsePointer(op.Path)
	if err := c.checkRemoved(i, to.Full); err != nil {
		return err
	}

	switch op.Op {
	case patch.OperationTypeAdd:
		if to.Index.IsField() {
			return c.write(i, to, OpSet, to.Full, op.Value)
		}
		return c.push(i, to, op.Value)
	case patch.OperationTypeRemove:
		return c.remove(to)
	case patch.OperationTypeReplace:
		if c.cfg.numericShorthand {
			if operator, n, ok := numericShorthand(op.Value); ok {
				c.put(to.Location, operator, to.Full, n)
				return nil
			}
		}
		return c.write(i, to, OpSet, to.Full, op.Value)
	case patch.OperationTypeMove:
		from := core.ParsePointer(op.From)
		if err := c.checkRemoved(i, from.Full); err != nil {
			return err
		}
		c.move(from, to)
	}
	return nil
}

// write stores a copy of value under operator at the location's current stage.
func (c *compiler) write(i int, to core.DotPath, operator, field string, value any) error {
	v, err := c.copyValue(i, value)
	if err != nil {
		return err
	}
	c.put(to.Location, operator, field, v)
	return nil
}

// put writes field under operator at the location's current stage and moves
// the location past it. It returns the stage written to.
func (c *compiler) put(location, operator, field string, value any) int {
	at := c.cursor.Locate(location)
	c.stage(at).set(operator, field, value)
	c.closeRuns(location)
	c.cursor.Advance(location, at+1)
	return at
}

func (c *compiler) remove(to core.DotPath) error {
	switch {
	case to.Index.IsField():
		c.put(to.Location, OpUnset, to.Full, 1)
		c.markRemoved(to.Full)
	case to.Index.IsPosition() && to.Index.N == 0:
		c.put(to.Location, OpPop, to.Location, -1)
	case to.Index.IsAppend() || (to.Index.IsPosition() && to.Index.N == -1):
		c.put(to.Location, OpPop, to.Location, 1)
	default:
		// Null the element in one stage, pull the nulls in the next.
		at := c.put(to.Location, OpSet, to.Full, nil)
		c.stage(at+1).set(OpPull, to.Location, nil)
		c.cursor.Advance(to.Location, at+2)
	}
	return nil
}

func (c *compiler) move(from, to core.DotPath) {
	at := c.cursor.Locate(from.Location)
	if dst := c.cursor.Locate(to.Location); dst > at {
		at = dst
	}
	c.stage(at).set(OpRename, from.Full, to.Full)
	c.closeRuns(from.Location)
	c.closeRuns(to.Location)
	c.cursor.Advance(from.Location, at+1)
	c.cursor.Advance(to.Location, at+1)
	c.markRemoved(from.Full)
}

// push adds value to the array at to.Location, merging it into the open
// $push on that location when the positions line up.
func (c *compiler) push(i int, to core.DotPath, value any) error {
	v, err := c.copyValue(i, value)
	if err != nil {
		return err
	}

	loc := to.Location
	if open, ok := c.runs[loc]; ok {
		if run, ok := open.run.Admit(to.Index, v); ok {
			open.run = run
			c.stage(open.stage).set(OpPush, loc, modifier(run))
			if c.cursor.Locate(loc) < open.stage+1 {
				c.cursor.Advance(loc, open.stage+1)
			}
			return nil
		}
		if c.cfg.strictArrayMerge {
			return &ArrayMergeError{Index: i, Location: loc, Position: to.Index.String()}
		}
		c.cfg.log.V(1).Info("closing push run", "location", loc, "stage", open.stage,
			"direction", open.run.Direction.String(), "position", to.Index.String())
	}

	at := c.cursor.Locate(loc)
	c.closeRuns(loc)
	run := core.StartRun(to.Index, v)
	c.runs[loc] = &openRun{stage: at, run: run}
	c.stage(at).set(OpPush, loc, modifier(run))
	c.cursor.Advance(loc, at+1)
	return nil
}

// closeRuns ends the open $push of every location related to loc.
func (c *compiler) closeRuns(loc string) {
	for key := range c.runs {
		if key == loc || core.Related(key, loc) {
			delete(c.runs, key)
		}
	}
}

func (c *compiler) markRemoved(path string) {
	if c.cfg.strictPathReuse && path != "" {
		c.removed = append(c.removed, path)
	}
}

func (c *compiler) checkRemoved(i int, path string) error {
	if !c.cfg.strictPathReuse {
		return nil
	}
	for _, removed := range c.removed {
		if core.Under(path, removed) {
			return &RemovedPathError{Index: i, Path: path, Removed: removed}
		}
	}
	return nil
}

func (c *compiler) copyValue(i int, v any) (any, error) {
	if c.cfg.copier == nil || v == nil {
		return v, nil
	}
	copied, err := c.cfg.copier(v)
	if err != nil {
		return nil, fmt.Errorf("operation %d: copying value: %w", i, err)
	}
	return copied, nil
}

func modifier(run core.PushRun) PushModifier {
	m := PushModifier{Each: run.Items}
	if run.HasPosition {
		position := run.Position
		m.Position = &position
	}
	return m
}

var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// numericShorthand recognizes "+n" and "-n" as $inc and "*n" and "×n" as $mul.
func numericShorthand(value any) (string, float64, bool) {
	s, ok := value.(string)
	if !ok || s == "" {
		return "", 0, false
	}

	operator, number := "", s
	switch {
	case s[0] == '+' || s[0] == '-':
		operator = OpInc
	case s[0] == '*':
		operator, number = OpMul, s[1:]
	case strings.HasPrefix(s, "×"):
		operator, number = OpMul, strings.TrimPrefix(s, "×")
	default:
		return "", 0, false
	}

	// ParseFloat also reads hex floats and "Inf"; only decimals count.
	if !decimalNumber.MatchString(number) {
		return "", 0, false
	}
	n, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return "", 0, false
	}
	return operator, n, true
}
