package tensor

import (
	"fmt"
	"slices"
)

// Shape represents tensor dimensions, e.g. [batch, channels, height, width].
type Shape []int

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that all dimensions are positive.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shape: must have at least one dimension")
	}
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("shape: dimension %d must be positive, got %d", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes are identical.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// ComputeStrides returns row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}
	return strides
}

func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}

// BroadcastShapes computes the broadcast result shape following NumPy rules:
// align shapes on the right, then each dimension pair must be equal or one
// of them must be 1.
func BroadcastShapes(a, b Shape) (Shape, error) {
	ndim := max(len(a), len(b))
	result := make(Shape, ndim)

	for i := 0; i < ndim; i++ {
		dimA, dimB := 1, 1
		if idx := len(a) - ndim + i; idx >= 0 {
			dimA = a[idx]
		}
		if idx := len(b) - ndim + i; idx >= 0 {
			dimB = b[idx]
		}

		switch {
		case dimA == dimB:
			result[i] = dimA
		case dimA == 1:
			result[i] = dimB
		case dimB == 1:
			result[i] = dimA
		default:
			return nil, fmt.Errorf("broadcast: incompatible shapes %v and %v at dimension %d", a, b, i)
		}
	}

	return result, nil
}
