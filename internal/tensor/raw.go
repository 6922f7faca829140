package tensor

import (
	"fmt"
	"unsafe"
)

// Device identifies where tensor data lives.
type Device int

const (
	// CPU is the only device in this build.
	CPU Device = iota
)

func (d Device) String() string {
	if d == CPU {
		return "cpu"
	}
	return fmt.Sprintf("device(%d)", int(d))
}

// RawTensor is a dtype-erased, contiguous tensor buffer. Backends operate on
// RawTensor; the generic Tensor wrapper adds compile-time element typing.
//
// The identity of a *RawTensor matters: the gradient tape keys gradients by
// pointer, so operations must return fresh RawTensors rather than mutating
// their inputs.
type RawTensor struct {
	data   []byte
	shape  Shape
	dtype  DataType
	device Device
}

// NewRaw allocates a zero-filled RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		dtype:  dtype,
		device: device,
	}, nil
}

// NewRawFromBytes wraps an existing byte buffer without copying.
// The buffer length must match shape and dtype.
func NewRawFromBytes(data []byte, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	want := shape.NumElements() * dtype.Size()
	if len(data) != want {
		return nil, fmt.Errorf("rawtensor: buffer size %d does not match shape %v dtype %s (want %d)",
			len(data), shape, dtype, want)
	}
	return &RawTensor{data: data, shape: shape.Clone(), dtype: dtype, device: device}, nil
}

// Shape returns the tensor shape. The returned slice must not be mutated.
func (r *RawTensor) Shape() Shape { return r.shape }

// DType returns the element type.
func (r *RawTensor) DType() DataType { return r.dtype }

// Device returns the device the data lives on.
func (r *RawTensor) Device() Device { return r.device }

// NumElements returns the total element count.
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// Bytes returns the underlying byte buffer.
func (r *RawTensor) Bytes() []byte { return r.data }

// Clone returns a deep copy with its own buffer.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{data: data, shape: r.shape.Clone(), dtype: r.dtype, device: r.device}
}

// WithShape returns a view sharing this buffer under a different shape.
// Element counts must match.
func (r *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("rawtensor: cannot view %v as %v (element count mismatch)", r.shape, shape)
	}
	return &RawTensor{data: r.data, shape: shape.Clone(), dtype: r.dtype, device: r.device}, nil
}

// AsFloat32 returns the buffer as a []float32. Panics on dtype mismatch.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustDType(Float32)
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(r.data))), r.NumElements())
}

// AsFloat64 returns the buffer as a []float64. Panics on dtype mismatch.
func (r *RawTensor) AsFloat64() []float64 {
	r.mustDType(Float64)
	return unsafe.Slice((*float64)(unsafe.Pointer(unsafe.SliceData(r.data))), r.NumElements())
}

// AsInt32 returns the buffer as a []int32. Panics on dtype mismatch.
func (r *RawTensor) AsInt32() []int32 {
	r.mustDType(Int32)
	return unsafe.Slice((*int32)(unsafe.Pointer(unsafe.SliceData(r.data))), r.NumElements())
}

// AsInt64 returns the buffer as a []int64. Panics on dtype mismatch.
func (r *RawTensor) AsInt64() []int64 {
	r.mustDType(Int64)
	return unsafe.Slice((*int64)(unsafe.Pointer(unsafe.SliceData(r.data))), r.NumElements())
}

// AsUint8 returns the buffer as a []uint8. Panics on dtype mismatch.
func (r *RawTensor) AsUint8() []uint8 {
	r.mustDType(Uint8)
	return r.data
}

// AsBool returns the buffer as a []bool. Panics on dtype mismatch.
func (r *RawTensor) AsBool() []bool {
	r.mustDType(Bool)
	return unsafe.Slice((*bool)(unsafe.Pointer(unsafe.SliceData(r.data))), r.NumElements())
}

func (r *RawTensor) mustDType(want DataType) {
	if r.dtype != want {
		panic(fmt.Sprintf("rawtensor: dtype is %s, not %s", r.dtype, want))
	}
}

func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(shape=%v, dtype=%s, device=%s)", r.shape, r.dtype, r.device)
}
