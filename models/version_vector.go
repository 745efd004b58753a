package models

// Ordering is the result of comparing two version vectors.
type Ordering int

const (
	// OrderEqual means both vectors carry identical counters.
	OrderEqual Ordering = iota

	// OrderBefore means the first vector happens-before the second:
	// every component is <= the other's and at least one is strictly less.
	OrderBefore

	// OrderAfter is the inverse of OrderBefore.
	OrderAfter

	// OrderConcurrent means neither vector dominates the other: the
	// conflict case the merge engine must resolve.
	OrderConcurrent
)

func (o Ordering) String() string {
	switch o {
	case OrderEqual:
		return "equal"
	case OrderBefore:
		return "before"
	case OrderAfter:
		return "after"
	case OrderConcurrent:
		return "concurrent"
	}
	return "unknown"
}

// VersionVector maps a device ID to a monotonically increasing counter of
// changes originated by that device. It establishes a partial causal order
// between changes to the same entity: missing components are treated as zero,
// so vectors from devices that have never seen each other are still
// comparable.
type VersionVector map[string]uint64

// NewVersionVector returns an empty vector ready for Increment.
func NewVersionVector() VersionVector {
	return make(VersionVector)
}

// Compare establishes the causal relationship between v and other.
func (v VersionVector) Compare(other VersionVector) Ordering {
	vLess, vGreater := false, false

	for device, counter := range v {
		if counter > other[device] {
			vGreater = true
		} else if counter < other[device] {
			vLess = true
		}
	}
	for device, counter := range other {
		if _, seen := v[device]; seen {
			continue
		}
		if counter > 0 {
			vLess = true
		}
	}

	switch {
	case vLess && vGreater:
		return OrderConcurrent
	case vLess:
		return OrderBefore
	case vGreater:
		return OrderAfter
	}
	return OrderEqual
}

// Merge returns the component-wise maximum of v and other. Neither input is
// modified. The result is the vector stored on an entity after conflict
// resolution, and is also used to advance sync bookkeeping.
func (v VersionVector) Merge(other VersionVector) VersionVector {
	merged := make(VersionVector, len(v)+len(other))
	for device, counter := range v {
		merged[device] = counter
	}
	for device, counter := range other {
		if counter > merged[device] {
			merged[device] = counter
		}
	}
	return merged
}

// Increment returns a copy of v with the counter for deviceID bumped by one.
// It is called exactly once per locally originated change, before the change
// is enqueued for transmission.
func (v VersionVector) Increment(deviceID string) VersionVector {
	next := v.Clone()
	next[deviceID]++
	return next
}

// Clone returns a deep copy of v. Clone of a nil vector is an empty vector.
func (v VersionVector) Clone() VersionVector {
	cloned := make(VersionVector, len(v))
	for device, counter := range v {
		cloned[device] = counter
	}
	return cloned
}

// Dominates reports whether v covers other: every counter in other is <= the
// corresponding counter in v.
func (v VersionVector) Dominates(other VersionVector) bool {
	ord := v.Compare(other)
	return ord == OrderAfter || ord == OrderEqual
}
