package gapr

// ListArena owns the node storage for a family of lists. Lists created from
// the same arena can be spliced into each other in O(1) with AppendList,
// which is how cluster membership sequences are combined during tree-order
// assembly. Handles are indices into the node slice; freed nodes are recycled
// through a free list.
type ListArena[T any] struct {
	nodes []listNode[T]
	free  []int
}

type listNode[T any] struct {
	prev, next int
	val        T
}

// NewListArena creates an arena with room for about capacity nodes before
// the backing slice has to grow. Sentinels count against capacity.
func NewListArena[T any](capacity int) *ListArena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &ListArena[T]{nodes: make([]listNode[T], 0, capacity)}
}

// alloc returns the handle of a fresh node linked to itself.
func (a *ListArena[T]) alloc(v T) int {
	if k := len(a.free); k > 0 {
		id := a.free[k-1]
		a.free = a.free[:k-1]
		a.nodes[id] = listNode[T]{prev: id, next: id, val: v}
		return id
	}
	a.nodes = append(a.nodes, listNode[T]{val: v})
	id := len(a.nodes) - 1
	a.nodes[id].prev = id
	a.nodes[id].next = id
	return id
}

func (a *ListArena[T]) release(id int) {
	var zero T
	a.nodes[id] = listNode[T]{val: zero}
	a.free = append(a.free, id)
}

// insertAfter links node id directly after node at.
func (a *ListArena[T]) insertAfter(at, id int) {
	c := a.nodes[at].next
	a.nodes[id].next = c
	a.nodes[id].prev = at
	a.nodes[at].next = id
	a.nodes[c].prev = id
}

// NewList allocates a sentinel in the arena and returns an empty list.
// An empty list's sentinel points to itself in both directions.
func (a *ListArena[T]) NewList() *List[T] {
	var zero T
	h := a.alloc(zero)
	return &List[T]{arena: a, head: h, win: h}
}

// List is a circular doubly-linked sequence stored in a ListArena. A movable
// cursor (the "window") points at the current element; its 1-based position
// is tracked alongside the handle, with position 0 meaning the cursor sits on
// the sentinel. All positional queries on an empty list report no value
// rather than failing.
type List[T any] struct {
	arena  *ListArena[T]
	head   int // sentinel handle
	win    int // cursor handle; equals head when on the sentinel
	index  int // 1-based cursor position; 0 on the sentinel
	length int
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int { return l.length }

// IsHead reports whether the cursor is on the sentinel.
func (l *List[T]) IsHead() bool { return l.win == l.head }

// IsFirst reports whether the cursor is on the first element.
func (l *List[T]) IsFirst() bool {
	return l.length > 0 && l.win == l.arena.nodes[l.head].next
}

// IsLast reports whether the cursor is on the last element.
func (l *List[T]) IsLast() bool {
	return l.length > 0 && l.win == l.arena.nodes[l.head].prev
}

// Insert places v immediately after the cursor and returns it.
// The cursor does not move.
func (l *List[T]) Insert(v T) T {
	l.arena.insertAfter(l.win, l.arena.alloc(v))
	l.length++
	return v
}

// Prepend places v at the front of the list and returns it.
func (l *List[T]) Prepend(v T) T {
	l.arena.insertAfter(l.head, l.arena.alloc(v))
	l.length++
	if l.index > 0 {
		l.index++
	}
	return v
}

// Append places v at the end of the list and returns it.
func (l *List[T]) Append(v T) T {
	l.arena.insertAfter(l.arena.nodes[l.head].prev, l.arena.alloc(v))
	l.length++
	return v
}

// AppendList splices all of src's elements onto the end of l in O(1) and
// leaves src empty with its cursor reset. Both lists must come from the same
// arena; AppendList panics on cross-arena or self splices since those are
// programmer errors, not data conditions.
func (l *List[T]) AppendList(src *List[T]) *List[T] {
	if src.arena != l.arena {
		panic("gapr: AppendList requires lists from the same arena")
	}
	if src == l {
		panic("gapr: cannot append a list to itself")
	}
	if src.length == 0 {
		return l
	}
	a := l.arena
	tail := a.nodes[l.head].prev
	first := a.nodes[src.head].next
	last := a.nodes[src.head].prev

	a.nodes[tail].next = first
	a.nodes[first].prev = tail
	a.nodes[last].next = l.head
	a.nodes[l.head].prev = last

	a.nodes[src.head].prev = src.head
	a.nodes[src.head].next = src.head

	l.length += src.length
	src.length = 0
	src.win = src.head
	src.index = 0
	return l
}

// Remove unlinks the element under the cursor, moves the cursor to its
// predecessor, and returns the removed value. It reports false with the zero
// value when the cursor is on the sentinel (in particular, on an empty list).
func (l *List[T]) Remove() (T, bool) {
	var zero T
	if l.win == l.head {
		return zero, false
	}
	a := l.arena
	id := l.win
	v := a.nodes[id].val
	l.win = a.nodes[id].prev
	a.nodes[a.nodes[id].prev].next = a.nodes[id].next
	a.nodes[a.nodes[id].next].prev = a.nodes[id].prev
	a.release(id)
	l.length--
	l.index--
	return v, true
}

// Value returns the element under the cursor.
func (l *List[T]) Value() (T, bool) {
	if l.win == l.head {
		var zero T
		return zero, false
	}
	return l.arena.nodes[l.win].val, true
}

// SetValue replaces the element under the cursor and returns the previous
// value. It reports false without storing when the cursor is on the sentinel.
func (l *List[T]) SetValue(v T) (T, bool) {
	if l.win == l.head {
		var zero T
		return zero, false
	}
	old := l.arena.nodes[l.win].val
	l.arena.nodes[l.win].val = v
	return old, true
}

// GetAt moves the cursor to the 1-based position pos with a directional
// linear scan from the current cursor, walking forward or backward toward the
// target, and returns the element there. Positions outside [1, Len] report
// false and leave the cursor in place.
func (l *List[T]) GetAt(pos int) (T, bool) {
	if pos < 1 || pos > l.length {
		var zero T
		return zero, false
	}
	a := l.arena
	switch {
	case pos < l.index:
		for i := l.index; i > pos; i-- {
			l.win = a.nodes[l.win].prev
		}
	case pos > l.index:
		for i := l.index; i < pos; i++ {
			l.win = a.nodes[l.win].next
		}
	}
	l.index = pos
	return a.nodes[l.win].val, true
}

// Next advances the cursor circularly and returns the element under it.
// Moving past the last element lands on the sentinel, reported as no value;
// advancing again wraps to the first element.
func (l *List[T]) Next() (T, bool) {
	l.win = l.arena.nodes[l.win].next
	l.index++
	if l.index > l.length {
		l.index = 0
	}
	return l.Value()
}

// Prev moves the cursor circularly to the previous element and returns it.
// Moving before the first element lands on the sentinel; moving back from
// the sentinel wraps to the last element.
func (l *List[T]) Prev() (T, bool) {
	l.win = l.arena.nodes[l.win].prev
	l.index--
	if l.index < 0 {
		l.index = l.length + l.index + 1
	}
	return l.Value()
}

// First moves the cursor to the first element and returns it.
func (l *List[T]) First() (T, bool) {
	if l.length == 0 {
		l.win = l.head
		l.index = 0
		var zero T
		return zero, false
	}
	l.win = l.arena.nodes[l.head].next
	l.index = 1
	return l.arena.nodes[l.win].val, true
}

// Last moves the cursor to the last element and returns it.
func (l *List[T]) Last() (T, bool) {
	if l.length == 0 {
		l.win = l.head
		l.index = 0
		var zero T
		return zero, false
	}
	l.win = l.arena.nodes[l.head].prev
	l.index = l.length
	return l.arena.nodes[l.win].val, true
}

// Values returns the elements in order without moving the cursor.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.length)
	a := l.arena
	for id := a.nodes[l.head].next; id != l.head; id = a.nodes[id].next {
		out = append(out, a.nodes[id].val)
	}
	return out
}

// Stack is a LIFO built on a List using prepend/remove-first semantics.
// It owns a private arena, so stacks are self-contained.
type Stack[T any] struct {
	list *List[T]
}

// NewStack returns an empty stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{list: NewListArena[T](8).NewList()}
}

// Push places v on top of the stack.
func (s *Stack[T]) Push(v T) { s.list.Prepend(v) }

// Pop removes and returns the top element, reporting false when empty.
func (s *Stack[T]) Pop() (T, bool) {
	s.list.First()
	return s.list.Remove()
}

// Top returns the top element without removing it.
func (s *Stack[T]) Top() (T, bool) { return s.list.First() }

// NextToTop returns the element just below the top.
func (s *Stack[T]) NextToTop() (T, bool) {
	if _, ok := s.list.First(); !ok {
		var zero T
		return zero, false
	}
	return s.list.Next()
}

// Bottom returns the deepest element of the stack.
func (s *Stack[T]) Bottom() (T, bool) { return s.list.Last() }

// Empty reports whether the stack has no elements.
func (s *Stack[T]) Empty() bool { return s.list.Len() == 0 }

// Size returns the number of stacked elements.
func (s *Stack[T]) Size() int { return s.list.Len() }
