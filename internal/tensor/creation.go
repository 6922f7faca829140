package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

func mustRaw(shape Shape, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return raw
}

// Zeros returns a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return New[T](mustRaw(shape, inferDataType[T](), backend.Device()), backend)
}

// Ones returns a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	return Full[T](shape, 1, backend)
}

// Full returns a tensor filled with the given value.
func Full[T DType, B Backend](shape Shape, value float64, backend B) *Tensor[T, B] {
	raw := mustRaw(shape, inferDataType[T](), backend.Device())
	fillRaw(raw, value)
	return New[T](raw, backend)
}

func fillRaw(raw *RawTensor, value float64) {
	switch raw.DType() {
	case Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Int32:
		data := raw.AsInt32()
		for i := range data {
			data[i] = int32(value)
		}
	case Int64:
		data := raw.AsInt64()
		for i := range data {
			data[i] = int64(value)
		}
	case Uint8:
		data := raw.AsUint8()
		for i := range data {
			data[i] = uint8(value)
		}
	case Bool:
		data := raw.AsBool()
		for i := range data {
			data[i] = value != 0
		}
	}
}

// FromSlice builds a tensor from a Go slice. The slice length must match
// the shape's element count; data is copied.
func FromSlice[T DType, B Backend](data []T, shape Shape, backend B) *Tensor[T, B] {
	if len(data) != shape.NumElements() {
		panic(fmt.Sprintf("tensor: slice length %d does not match shape %v", len(data), shape))
	}
	raw := mustRaw(shape, inferDataType[T](), backend.Device())
	switch any(data).(type) {
	case []float32:
		copy(raw.AsFloat32(), any(data).([]float32))
	case []float64:
		copy(raw.AsFloat64(), any(data).([]float64))
	case []int32:
		copy(raw.AsInt32(), any(data).([]int32))
	case []int64:
		copy(raw.AsInt64(), any(data).([]int64))
	case []uint8:
		copy(raw.AsUint8(), any(data).([]uint8))
	case []bool:
		copy(raw.AsBool(), any(data).([]bool))
	}
	return New[T](raw, backend)
}

// Randn returns a tensor with standard normal values (Box-Muller).
// Only float32 and float64 are supported.
func Randn[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	dtype := inferDataType[T]()
	raw := mustRaw(shape, dtype, backend.Device())
	n := shape.NumElements()
	switch dtype {
	case Float32:
		data := raw.AsFloat32()
		for i := 0; i < n; i += 2 {
			z0, z1 := boxMuller()
			data[i] = float32(z0)
			if i+1 < n {
				data[i+1] = float32(z1)
			}
		}
	case Float64:
		data := raw.AsFloat64()
		for i := 0; i < n; i += 2 {
			z0, z1 := boxMuller()
			data[i] = z0
			if i+1 < n {
				data[i+1] = z1
			}
		}
	default:
		panic(fmt.Sprintf("tensor: randn requires a float dtype, got %s", dtype))
	}
	return New[T](raw, backend)
}

func boxMuller() (float64, float64) {
	u1 := rand.Float64()
	for u1 == 0 {
		u1 = rand.Float64()
	}
	u2 := rand.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	return r * math.Cos(2*math.Pi*u2), r * math.Sin(2*math.Pi*u2)
}

// Rand returns a tensor with uniform values in [0, 1).
// Only float32 and float64 are supported.
func Rand[T DType, B Backend](shape Shape, backend B) *Tensor[T, B] {
	dtype := inferDataType[T]()
	raw := mustRaw(shape, dtype, backend.Device())
	switch dtype {
	case Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = rand.Float32()
		}
	case Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = rand.Float64()
		}
	default:
		panic(fmt.Sprintf("tensor: rand requires a float dtype, got %s", dtype))
	}
	return New[T](raw, backend)
}

// Arange returns a 1D tensor with values [start, start+1, ..., end-1].
func Arange[T DType, B Backend](start, end int, backend B) *Tensor[T, B] {
	if end <= start {
		panic(fmt.Sprintf("tensor: arange requires end > start, got [%d, %d)", start, end))
	}
	n := end - start
	raw := mustRaw(Shape{n}, inferDataType[T](), backend.Device())
	for i := 0; i < n; i++ {
		setRawElement(raw, i, float64(start+i))
	}
	return New[T](raw, backend)
}

func setRawElement(raw *RawTensor, i int, value float64) {
	switch raw.DType() {
	case Float32:
		raw.AsFloat32()[i] = float32(value)
	case Float64:
		raw.AsFloat64()[i] = value
	case Int32:
		raw.AsInt32()[i] = int32(value)
	case Int64:
		raw.AsInt64()[i] = int64(value)
	case Uint8:
		raw.AsUint8()[i] = uint8(value)
	case Bool:
		raw.AsBool()[i] = value != 0
	}
}
