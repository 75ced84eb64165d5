package runtime

// step pops the current top state and dispatches it, pushing back whatever
// states/results the primitive's semantics call for. Every op pops exactly
// the state it dispatches on; popping then conditionally re-pushing a
// continuation is equivalent to (and simpler in Go than) the reference
// implementation's "mutate top state in place", since the net stack
// contents are identical either way.
func (c *Context) step() {
	cur := c.states.Pop()
	st := c.table.States[cur]

	switch st.Op {
	case OpSeqStart:
		c.states.Push(st.Cont)
		c.states.Push(st.Target)

	case OpSeqMiddle:
		first := c.results.Peek()
		if first.Matched() {
			c.states.Push(st.Cont)
			c.states.Push(st.Target)
		} else {
			top := c.results.Pop()
			c.results.Push(top.WithWork(SeqWork))
		}

	case OpSeqEnd:
		second := c.results.Pop()
		first := c.results.Pop()
		if second.Matched() {
			c.results.Push(Success(combineMatches(first.M, second.M)))
		} else {
			c.pos -= int(first.Distance())
			scanDistance := maxU32(first.M.ScanDistance, first.M.Distance+second.TotalScanDistance())
			c.results.Push(Failure(scanDistance, first.M.Work+second.TotalWork()))
		}

	case OpChoiceStart:
		c.savedPos.Push(c.pos)
		c.states.Push(st.Cont)
		c.states.Push(st.Target)

	case OpChoiceMiddle:
		first := c.results.Peek()
		if first.errorFree() {
			c.savedPos.Pop()
			top := c.results.Pop()
			c.results.Push(top.WithWork(ChoiceWork))
		} else {
			c.pos -= int(first.Distance())
			c.states.Push(st.Cont)
			c.states.Push(st.Target)
		}

	case OpChoiceEnd:
		second := c.results.Pop()
		first := c.results.Pop()
		entryPos := c.savedPos.Pop()

		switch {
		case !first.Matched():
			c.results.Push(second.WithMaxScanDistance(first.ScanDistance))

		case !second.Matched():
			c.pos = entryPos + int(first.M.Distance)
			c.results.Push(first.WithMaxScanDistance(second.TotalScanDistance()))

		default:
			firstDist := *first.M.ErrorDistance
			useSecond := true
			if second.M.ErrorDistance != nil {
				useSecond = firstDist > *second.M.ErrorDistance
			}
			if useSecond {
				c.results.Push(second.WithMaxScanDistance(first.M.ScanDistance))
			} else {
				c.pos = entryPos + int(first.M.Distance)
				c.results.Push(first.WithMaxScanDistance(second.M.ScanDistance))
			}
		}

	case OpFirstChoiceStart:
		c.savedPos.Push(c.pos)
		c.states.Push(st.Cont)
		c.states.Push(st.Target)

	case OpFirstChoiceMiddle:
		entryPos := c.savedPos.Pop()
		first := c.results.Peek()
		if !first.Matched() {
			c.results.Pop()
			c.pos = entryPos
			c.states.Push(st.Target)
		}
		// first matched: leave it as the final result, nothing more to push.

	case OpNotAheadStart:
		c.savedPos.Push(c.pos)
		c.states.Push(st.Cont)
		c.states.Push(st.Target)

	case OpNotAheadEnd:
		r := c.results.Pop()
		entryPos := c.savedPos.Pop()
		c.pos = entryPos
		if r.Matched() {
			c.results.Push(Failure(r.M.ScanDistance, r.M.Work))
		} else {
			c.results.Push(Success(&Match{ScanDistance: r.ScanDistance, Work: r.Work}))
		}

	case OpErrorStart:
		c.states.Push(st.Cont)
		c.states.Push(st.Target)

	case OpErrorEnd:
		r := c.results.Pop()
		if r.Matched() {
			m := *r.M
			d := uint32(0)
			m.ErrorDistance = &d
			m.Grouping = errorGrouping(st.Expected)
			c.results.Push(Success(&m))
		} else {
			var recover uint32
			if c.pos < c.input.Len() {
				recover = 1
			}
			d := uint32(0)
			c.pos += int(recover)
			c.results.Push(Success(&Match{
				Distance:      recover,
				ScanDistance:  maxU32(r.ScanDistance, recover),
				ErrorDistance: &d,
				Work:          r.Work + MarkErrorWork,
				Grouping:      errorGrouping(st.Expected),
			}))
		}

	case OpLabelStart:
		c.states.Push(st.Cont)
		c.states.Push(st.Target)

	case OpLabelEnd:
		r := c.results.Pop()
		if r.Matched() {
			m := *r.M
			m.Grouping = labelGrouping(st.Label)
			c.results.Push(Success(&m))
		} else {
			c.results.Push(r)
		}

	case OpCacheStart:
		if hit, ok := c.cacheGet(st.Slot, c.pos); ok {
			if hit.Matched() {
				c.pos += int(hit.M.Distance)
			}
			c.results.Push(hit)
		} else {
			c.states.Push(st.Cont)
			c.states.Push(st.Target)
		}

	case OpCacheEnd:
		r := c.results.Peek()
		if r.TotalWork() > MaxUncachedWork {
			var key int
			stored := r
			if r.Matched() {
				key = c.pos - int(r.M.Distance)
				m := *r.M
				m.Work = CacheWork
				stored = Success(&m)
			} else {
				key = c.pos
				stored.Work = CacheWork
			}
			c.cacheSet(st.Slot, key, stored)
		}

	case OpDelegate:
		c.states.Push(st.Target)

	case OpSeries:
		ok, length := st.Matcher(c.input, c.pos)
		if ok {
			c.pos += length
			c.results.Push(Success(&Match{Distance: uint32(length), ScanDistance: uint32(length), Work: SeriesWork}))
		} else {
			c.results.Push(Failure(uint32(length), SeriesWork))
		}
	}
}
