package engine

import "strconv"

// Handle is a generational slot reference: the low 32 bits index a slot,
// the high 32 bits carry the slot's generation when the handle was minted.
// A removed slot bumps its generation, so stale handles never resolve.
type Handle uint64

type slotIndex uint32
type generation uint32

const indexBits = 32

func makeHandle(idx slotIndex, gen generation) Handle {
	return Handle(uint64(gen)<<indexBits | uint64(idx))
}

func (h Handle) index() slotIndex {
	return slotIndex(uint32(h))
}

func (h Handle) generation() generation {
	return generation(uint32(uint64(h) >> indexBits))
}

func (h Handle) String() string {
	return strconv.FormatUint(uint64(h.index()), 10) + "v" + strconv.FormatUint(uint64(h.generation()), 10)
}

// Valid reports whether h could have been minted by a SlotMap.
func (h Handle) Valid() bool {
	return h.index() > 0
}

// BodyHandle references a body in an engine's body table.
type BodyHandle Handle

func (h BodyHandle) String() string { return "body:" + Handle(h).String() }

// JointHandle references a joint in an engine's joint table.
type JointHandle Handle

func (h JointHandle) String() string { return "joint:" + Handle(h).String() }

// SlotMap stores values behind generational handles. Slot indices start at
// 1 so the zero handle is never valid.
type SlotMap[H ~uint64, T any] struct {
	values []T
	gens   []generation
	live   []bool
	free   []slotIndex
	count  int
}

// Insert stores v and returns its handle.
func (m *SlotMap[H, T]) Insert(v T) H {
	var idx slotIndex
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		m.values = append(m.values, v)
		m.gens = append(m.gens, 0)
		m.live = append(m.live, false)
		idx = slotIndex(len(m.values))
	}
	m.values[idx-1] = v
	m.live[idx-1] = true
	m.count++
	return H(makeHandle(idx, m.gens[idx-1]))
}

// Get returns the value behind h.
func (m *SlotMap[H, T]) Get(h H) (T, bool) {
	var zero T
	i, ok := m.slot(h)
	if !ok {
		return zero, false
	}
	return m.values[i], true
}

// Contains reports whether h still resolves.
func (m *SlotMap[H, T]) Contains(h H) bool {
	_, ok := m.slot(h)
	return ok
}

// Remove deletes the value behind h and invalidates every copy of h.
func (m *SlotMap[H, T]) Remove(h H) (T, bool) {
	var zero T
	i, ok := m.slot(h)
	if !ok {
		return zero, false
	}
	v := m.values[i]
	m.values[i] = zero
	m.live[i] = false
	m.gens[i]++
	m.free = append(m.free, slotIndex(i+1))
	m.count--
	return v, true
}

// Len returns the number of live values.
func (m *SlotMap[H, T]) Len() int {
	return m.count
}

// Each visits live values in slot order. fn must not insert or remove.
func (m *SlotMap[H, T]) Each(fn func(H, T)) {
	for i, v := range m.values {
		if m.live[i] {
			fn(H(makeHandle(slotIndex(i+1), m.gens[i])), v)
		}
	}
}

func (m *SlotMap[H, T]) slot(h H) (int, bool) {
	hh := Handle(h)
	idx := hh.index()
	if m == nil || idx == 0 || int(idx) > len(m.values) {
		return 0, false
	}
	i := int(idx) - 1
	if !m.live[i] || m.gens[i] != hh.generation() {
		return 0, false
	}
	return i, true
}
