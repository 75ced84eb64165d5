package runtime

// Context is one parse's interpreter state: the dual state/result stacks,
// the cursor, and the packrat cache. A Context is single-use — create one
// per Parse call.
//
// Grounded on original_source/src/runtime/context.rs's Context (state_stack
// + result_stack over a grammar's dispatch table); the position-rewind,
// stash, and error-compare logic in ops.go follows that file's
// state_seq_*/state_choice_*/state_not_ahead_*/state_error_* bodies, with
// Label/Cache/FirstChoice added per spec.md §4.12 (not present in that
// revision) and Error's failure path re-derived from spec.md §8 scenario 6
// (the worked example), since that revision's mark_error only covers the
// already-matched case explicitly.
type Context struct {
	table *Table
	input Input
	pos   int

	states   *Stack[StateID]
	results  *Stack[Result]
	savedPos *Stack[int]

	cache []map[int]Result
}

// NewContext builds an interpreter over table for input.
func NewContext(table *Table, input Input) *Context {
	c := &Context{
		table:    table,
		input:    input,
		states:   NewStack[StateID](64),
		results:  NewStack[Result](64),
		savedPos: NewStack[int](16),
	}

	maxSlot := -1
	for _, st := range table.States {
		if st.Op == OpCacheStart || st.Op == OpCacheEnd {
			if st.Slot > maxSlot {
				maxSlot = st.Slot
			}
		}
	}
	c.cache = make([]map[int]Result, maxSlot+1)

	c.states.Push(HaltState)
	c.states.Push(table.Start)
	return c
}

// Parse runs the interpreter to completion and returns the single result
// it leaves behind, per spec.md §5's invariant that result_stack holds
// exactly one populated element once state_stack is down to the sentinel.
func (c *Context) Parse() Result {
	for c.states.Peek() != HaltState {
		c.step()
	}
	return c.results.Pop()
}

func (c *Context) cacheGet(slot, pos int) (Result, bool) {
	m := c.cache[slot]
	if m == nil {
		return Result{}, false
	}
	r, ok := m[pos]
	return r, ok
}

func (c *Context) cacheSet(slot, pos int, r Result) {
	if c.cache[slot] == nil {
		c.cache[slot] = make(map[int]Result)
	}
	c.cache[slot][pos] = r
}
