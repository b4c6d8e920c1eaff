package charstream

import "fmt"

// Interval is a closed range [Start, Stop] of code-point ordinals.
// An interval with Start > Stop is empty.
type Interval struct {
	Start int
	Stop  int
}

// Of returns the inclusive interval [a, b].
func Of(a, b int) Interval {
	return Interval{Start: a, Stop: b}
}

// Empty reports whether the interval contains no positions.
func (iv Interval) Empty() bool {
	return iv.Start > iv.Stop
}

// Len returns the number of positions in the interval (0 when empty).
func (iv Interval) Len() int {
	if iv.Empty() {
		return 0
	}
	return iv.Stop - iv.Start + 1
}

// Contains reports whether i lies inside the interval.
func (iv Interval) Contains(i int) bool {
	return i >= iv.Start && i <= iv.Stop
}

// Union returns the smallest interval covering both iv and other.
// Empty operands are ignored.
func (iv Interval) Union(other Interval) Interval {
	switch {
	case iv.Empty():
		return other
	case other.Empty():
		return iv
	}
	return Interval{Start: min(iv.Start, other.Start), Stop: max(iv.Stop, other.Stop)}
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d..%d", iv.Start, iv.Stop)
}
