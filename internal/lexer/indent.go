package lexer

// TabSize is the column multiple a tab advances to.
const TabSize = 8

// level is one indentation width measured twice: once with tabs expanded
// to TabSize and once with tabs counted as a single column.
type level struct {
	wide   int
	narrow int
}

// indenter tracks the stack of open indentation levels. The bottom of the
// stack is a sentinel at column 0 and is never popped.
type indenter struct {
	stack []level
}

func newIndenter() *indenter {
	return &indenter{stack: []level{{}}}
}

// measure returns the width of a run of spaces and tabs under both
// expansions.
func measure(ws string) level {
	var l level
	for i := 0; i < len(ws); i++ {
		switch ws[i] {
		case '\t':
			l.wide = (l.wide/TabSize + 1) * TabSize
			l.narrow++
		case '\f':
			l.wide, l.narrow = 0, 0
		default:
			l.wide++
			l.narrow++
		}
	}
	return l
}

// depth returns the number of open levels above the sentinel.
func (d *indenter) depth() int { return len(d.stack) - 1 }

func (d *indenter) top() level { return d.stack[len(d.stack)-1] }

// line compares the indentation of a logical line with the stack. It
// returns +1 when a level was pushed, the number of popped levels as a
// negative count, or 0. Both expansions must agree on the outcome.
func (d *indenter) line(l level) (int, string) {
	top := d.top()
	switch {
	case l.wide == top.wide:
		if l.narrow != top.narrow {
			return 0, msgAmbiguousTabs
		}
		return 0, ""
	case l.wide > top.wide:
		if l.narrow <= top.narrow {
			return 0, msgAmbiguousTabs
		}
		d.stack = append(d.stack, l)
		return 1, ""
	}

	popped := 0
	for len(d.stack) > 1 && l.wide < d.top().wide {
		d.stack = d.stack[:len(d.stack)-1]
		popped++
	}
	if l.wide != d.top().wide {
		return -popped, msgInconsistentDedent
	}
	if l.narrow != d.top().narrow {
		return -popped, msgAmbiguousTabs
	}
	return -popped, ""
}

// close pops every open level and returns how many there were.
func (d *indenter) close() int {
	n := d.depth()
	d.stack = d.stack[:1]
	return n
}

const (
	msgInconsistentDedent = "unindent does not match any outer indentation level"
	msgAmbiguousTabs      = "ambiguous mix of tabs and spaces in indentation"
)
