package buffer

// nilRef marks an absent link in the line arena.
const nilRef = -1

// node is one arena slot. prev and next are arena indices.
type node struct {
	line Line
	prev int
	next int
}

// index is a doubly linked list of lines stored in an arena and addressed
// by slot. A cursor remembers the most recently selected node so lookups
// during sequential editing walk only the distance from it.
type index struct {
	nodes []node
	free  []int
	head  int
	tail  int
	count int

	cur    int // cursor slot, nilRef when unset
	curNum int // line number of cur
}

func newIndex() index {
	return index{head: nilRef, tail: nilRef, cur: nilRef}
}

// reset drops every line and releases in-memory data.
func (x *index) reset() {
	clear(x.nodes)
	x.nodes = x.nodes[:0]
	x.free = x.free[:0]
	x.head, x.tail = nilRef, nilRef
	x.count = 0
	x.cur, x.curNum = nilRef, 0
}

func (x *index) alloc(l Line) int {
	if n := len(x.free); n > 0 {
		ref := x.free[n-1]
		x.free = x.free[:n-1]
		x.nodes[ref] = node{line: l, prev: nilRef, next: nilRef}
		return ref
	}
	x.nodes = append(x.nodes, node{line: l, prev: nilRef, next: nilRef})
	return len(x.nodes) - 1
}

// append links l after the last line without moving the cursor.
func (x *index) append(l Line) {
	ref := x.alloc(l)
	x.nodes[ref].prev = x.tail
	if x.tail != nilRef {
		x.nodes[x.tail].next = ref
	} else {
		x.head = ref
	}
	x.tail = ref
	x.count++
}

// seek moves the cursor to line n and returns its slot.
func (x *index) seek(n int) (int, error) {
	if n < 0 || n >= x.count {
		return nilRef, ErrOutOfRange
	}
	if x.cur == nilRef {
		x.cur, x.curNum = x.head, 0
	}
	for x.curNum > n {
		prev := x.nodes[x.cur].prev
		if prev == nilRef {
			return nilRef, ErrIndexCorruption
		}
		x.cur = prev
		x.curNum--
	}
	for x.curNum < n {
		next := x.nodes[x.cur].next
		if next == nilRef {
			return nilRef, ErrOutOfRange
		}
		x.cur = next
		x.curNum++
	}
	return x.cur, nil
}

// line returns the line record at slot ref.
func (x *index) line(ref int) *Line {
	return &x.nodes[ref].line
}

// insert places l before line n, or after the last line when n equals
// the count. The cursor is left on the new line.
func (x *index) insert(n int, l Line) error {
	if n < 0 || n > x.count {
		return ErrOutOfRange
	}
	if n == x.count {
		x.append(l)
		x.cur, x.curNum = x.tail, n
		return nil
	}
	at, err := x.seek(n)
	if err != nil {
		return err
	}
	ref := x.alloc(l)
	prev := x.nodes[at].prev
	x.nodes[ref].prev = prev
	x.nodes[ref].next = at
	x.nodes[at].prev = ref
	if prev != nilRef {
		x.nodes[prev].next = ref
	} else {
		x.head = ref
	}
	x.count++
	x.cur, x.curNum = ref, n
	return nil
}

// remove unlinks line n and returns it. The cursor moves to the line that
// took its place, or to the new last line.
func (x *index) remove(n int) (Line, error) {
	ref, err := x.seek(n)
	if err != nil {
		return Line{}, err
	}
	nd := x.nodes[ref]
	if nd.prev != nilRef {
		x.nodes[nd.prev].next = nd.next
	} else {
		x.head = nd.next
	}
	if nd.next != nilRef {
		x.nodes[nd.next].prev = nd.prev
	} else {
		x.tail = nd.prev
	}
	x.count--

	switch {
	case nd.next != nilRef:
		x.cur, x.curNum = nd.next, n
	case nd.prev != nilRef:
		x.cur, x.curNum = nd.prev, n-1
	default:
		x.cur, x.curNum = nilRef, 0
	}

	x.nodes[ref] = node{prev: nilRef, next: nilRef}
	x.free = append(x.free, ref)
	return nd.line, nil
}

// each calls fn for every line in order, stopping at the first error.
// The cursor is not moved.
func (x *index) each(fn func(n int, l *Line) error) error {
	n := 0
	for ref := x.head; ref != nilRef; ref = x.nodes[ref].next {
		if n >= x.count {
			return ErrIndexCorruption
		}
		if err := fn(n, &x.nodes[ref].line); err != nil {
			return err
		}
		n++
	}
	if n != x.count {
		return ErrIndexCorruption
	}
	return nil
}
