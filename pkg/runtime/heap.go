package runtime

// Heap is a handle table for nodes referenced from compact Words. A node is
// registered the first time it is stored in a Managed slot and keeps the same
// handle until a collection finds it unreachable.
//
// Collection is mark and sweep over the registered nodes. Marking starts at
// the permanent roots and at the protect stack; every swept node has its
// referents detached. Collect must only be called at safe points where no
// evaluation state lives solely on the Go stack.
type Heap struct {
	slots   []heapSlot
	free    []int
	handles map[Node]uintptr
	roots   []Node
	protect []Node

	pending      bool
	registered   int
	sinceCollect int
	stats        HeapStats
}

type heapSlot struct {
	node Node
}

// HeapStats summarises collector activity.
type HeapStats struct {
	Collections int
	Swept       int
	Live        int
}

func NewHeap() *Heap {
	return &Heap{handles: make(map[Node]uintptr)}
}

// Handle registers n if needed and returns its 8-aligned handle.
func (h *Heap) Handle(n Node) uintptr {
	if n == nil {
		return 0
	}
	if handle, ok := h.handles[n]; ok {
		return handle
	}
	var idx int
	if k := len(h.free); k > 0 {
		idx = h.free[k-1]
		h.free = h.free[:k-1]
		h.slots[idx].node = n
	} else {
		idx = len(h.slots)
		h.slots = append(h.slots, heapSlot{node: n})
	}
	handle := uintptr(idx+1) << 3
	h.handles[n] = handle
	h.registered++
	h.sinceCollect++
	return handle
}

// Lookup resolves a handle produced by Handle. Panics on a stale handle.
func (h *Heap) Lookup(handle uintptr) Node {
	if handle == 0 {
		return nil
	}
	idx := int(handle>>3) - 1
	if idx < 0 || idx >= len(h.slots) || h.slots[idx].node == nil {
		panic(invariantf("heap: stale handle %#x", handle))
	}
	return h.slots[idx].node
}

// Len reports the number of registered nodes.
func (h *Heap) Len() int {
	return h.registered
}

// AllocatedSinceCollect counts registrations since the last collection.
func (h *Heap) AllocatedSinceCollect() int {
	return h.sinceCollect
}

// AddRoot makes n permanently reachable.
func (h *Heap) AddRoot(n Node) {
	if n != nil {
		h.roots = append(h.roots, n)
	}
}

// Protect pushes nodes on the protect stack and returns the mark that
// restores it.
func (h *Heap) Protect(nodes ...Node) int {
	mark := len(h.protect)
	for _, n := range nodes {
		if n != nil {
			h.protect = append(h.protect, n)
		}
	}
	return mark
}

// Unprotect pops the protect stack back to mark.
func (h *Heap) Unprotect(mark int) {
	if mark < 0 || mark > len(h.protect) {
		panic(invariantf("heap: unprotect mark %d outside stack of %d", mark, len(h.protect)))
	}
	for i := mark; i < len(h.protect); i++ {
		h.protect[i] = nil
	}
	h.protect = h.protect[:mark]
}

// Protected reports the depth of the protect stack.
func (h *Heap) Protected() int {
	return len(h.protect)
}

// RequestCollection asks for a collection at the next safe point.
func (h *Heap) RequestCollection() {
	h.pending = true
}

func (h *Heap) CollectionPending() bool {
	return h.pending
}

// Collect runs a full collection and returns the number of nodes swept.
func (h *Heap) Collect() int {
	marked := make(map[Node]struct{}, len(h.handles))
	var stack []Node
	push := func(n Node) {
		if n == nil {
			return
		}
		if _, seen := marked[n]; seen {
			return
		}
		marked[n] = struct{}{}
		stack = append(stack, n)
	}
	for _, n := range h.roots {
		push(n)
	}
	for _, n := range h.protect {
		push(n)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n.VisitReferents(push)
	}

	swept := 0
	for idx := range h.slots {
		n := h.slots[idx].node
		if n == nil {
			continue
		}
		if _, live := marked[n]; live {
			continue
		}
		delete(h.handles, n)
		h.slots[idx].node = nil
		h.free = append(h.free, idx)
		n.DetachReferents()
		swept++
	}
	h.registered -= swept
	h.sinceCollect = 0
	h.pending = false
	h.stats.Collections++
	h.stats.Swept += swept
	h.stats.Live = h.registered
	return swept
}

func (h *Heap) Stats() HeapStats {
	return h.stats
}
