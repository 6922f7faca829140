// Package tensor implements the core tensor types shared by all backends.
//
// RawTensor is the dtype-erased buffer backends compute on. Tensor[T, B]
// wraps a RawTensor with a compile-time element type and a backend, so user
// code gets type-safe operations while kernels stay monomorphic.
package tensor

import "fmt"

// Tensor is a type-safe view over a RawTensor bound to a backend.
// T is the element type; B is the backend performing the math.
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps a RawTensor in a typed Tensor. The raw dtype must match T.
func New[T DType, B Backend](raw *RawTensor, backend B) *Tensor[T, B] {
	if want := inferDataType[T](); raw.DType() != want {
		panic(fmt.Sprintf("tensor: raw dtype %s does not match type parameter %s", raw.DType(), want))
	}
	return &Tensor[T, B]{raw: raw, backend: backend}
}

// Raw returns the underlying RawTensor.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the backend bound to this tensor.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Shape returns the tensor shape.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// NumElements returns the total element count.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// DType returns the element type tag.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// Add returns t + other, element-wise with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub returns t - other, element-wise with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul returns t * other, element-wise with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div returns t / other, element-wise with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.Div(t.raw, other.raw), t.backend)
}

// MatMul returns the matrix product t @ other for 2D tensors.
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// AddScalar returns t + s applied element-wise.
func (t *Tensor[T, B]) AddScalar(s float64) *Tensor[T, B] {
	return New[T](t.backend.AddScalar(t.raw, s), t.backend)
}

// MulScalar returns t * s applied element-wise.
func (t *Tensor[T, B]) MulScalar(s float64) *Tensor[T, B] {
	return New[T](t.backend.MulScalar(t.raw, s), t.backend)
}

// Reshape returns a tensor with the same data and a new shape.
func (t *Tensor[T, B]) Reshape(dims ...int) *Tensor[T, B] {
	return New[T](t.backend.Reshape(t.raw, Shape(dims)), t.backend)
}

// Transpose permutes axes. With no arguments it reverses all axes.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T transposes a 2D tensor.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	return t.Transpose()
}

func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s](shape=%v, backend=%s)", t.raw.DType(), t.Shape(), t.backend.Name())
}
