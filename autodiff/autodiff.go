// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// The package wraps any backend in a decorator that records operations on a
// gradient tape; Backward walks the tape in reverse to produce gradients.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	x := tensor.Ones[float32](tensor.Shape{2, 2}, backend)
//	y := x.Mul(x)
//
//	seed, _ := tensor.NewRaw(y.Shape(), y.DType(), backend.Device())
//	for i := range seed.AsFloat32() {
//		seed.AsFloat32()[i] = 1
//	}
//	grads := backend.Tape().Backward(seed, backend)
package autodiff

import (
	"github.com/primer-ml/primer/internal/autodiff"
	"github.com/primer-ml/primer/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// New wraps a backend with gradient recording.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for reverse-mode differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates an empty gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}
