package sim

import "github.com/go-gl/mathgl/mgl64"

// Ripple is the origin of one expanding ring. Immutable once created.
type Ripple struct {
	Position mgl64.Vec3
	Birth    float64
}

// rippleRing keeps the most recent ripples in a fixed-capacity buffer.
// Pushing into a full ring overwrites the oldest entry.
type rippleRing struct {
	buffer []Ripple
	head   int // index of the oldest entry
	size   int
}

func newRippleRing(capacity int) rippleRing {
	if capacity < 1 {
		capacity = 1
	}
	return rippleRing{buffer: make([]Ripple, capacity)}
}

func (r *rippleRing) len() int { return r.size }

func (r *rippleRing) capacity() int { return len(r.buffer) }

func (r *rippleRing) push(w Ripple) {
	if r.size < len(r.buffer) {
		r.buffer[(r.head+r.size)%len(r.buffer)] = w
		r.size++
		return
	}
	r.buffer[r.head] = w
	r.head++
	if r.head >= len(r.buffer) {
		r.head = 0
	}
}

func (r *rippleRing) reset() {
	r.head = 0
	r.size = 0
}

// resize changes the capacity, keeping the newest entries in order.
func (r *rippleRing) resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if capacity == len(r.buffer) {
		return
	}
	kept := r.appendTo(make([]Ripple, 0, r.size))
	if len(kept) > capacity {
		kept = kept[len(kept)-capacity:]
	}
	buf := make([]Ripple, capacity)
	copy(buf, kept)
	r.buffer = buf
	r.head = 0
	r.size = len(kept)
}

// appendTo appends the ripples to dst oldest first.
func (r *rippleRing) appendTo(dst []Ripple) []Ripple {
	idx := r.head
	for i := 0; i < r.size; i++ {
		dst = append(dst, r.buffer[idx])
		idx++
		if idx >= len(r.buffer) {
			idx = 0
		}
	}
	return dst
}
