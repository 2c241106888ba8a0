package core

// Cursor tracks, per location, the stage where the next operation on that
// location has to land. A location inherits the cursor of every related
// location, so a write under "a.b" is never staged before an earlier write
// to "a" or to "a.b.c".
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	at map[string]int
}

// NewCursor returns an empty Cursor.
func NewCursor() *Cursor {
	return &Cursor{at: make(map[string]int)}
}

// Has reports whether loc itself is tracked.
func (c *Cursor) Has(loc string) bool {
	_, ok := c.at[loc]
	return ok
}

// Locate returns the first stage an operation on loc may be written to.
func (c *Cursor) Locate(loc string) int {
	if loc == "" {
		return 0
	}
	stage := 0
	for key, at := range c.at {
		if Related(key, loc) && at > stage {
			stage = at
		}
	}
	return stage
}

// Advance moves loc to stage. Tracked descendants of loc collapse into it and
// tracked ancestors follow it. Advancing the root is a no-op.
func (c *Cursor) Advance(loc string, stage int) {
	if loc == "" {
		return
	}
	for key := range c.at {
		switch {
		case key != loc && Under(key, loc):
			delete(c.at, key)
		case Under(loc, key):
			c.at[key] = stage
		}
	}
	c.at[loc] = stage
}

// Len returns the number of tracked locations.
func (c *Cursor) Len() int {
	return len(c.at)
}
