package optim

import (
	"fmt"
	"math"

	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/tensor"
)

// AdamConfig holds Adam hyperparameters (Kingma & Ba, 2014).
type AdamConfig struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
}

// DefaultAdamConfig returns the standard Adam hyperparameters.
func DefaultAdamConfig(lr float64) AdamConfig {
	return AdamConfig{LR: lr, Beta1: 0.9, Beta2: 0.999, Eps: 1e-8}
}

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	config AdamConfig
	step   int

	m map[*tensor.RawTensor][]float32 // first moment
	v map[*tensor.RawTensor][]float32 // second moment
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return &Adam[B]{
		params: params,
		config: config,
		m:      make(map[*tensor.RawTensor][]float32),
		v:      make(map[*tensor.RawTensor][]float32),
	}
}

// LR returns the learning rate.
func (a *Adam[B]) LR() float64 { return a.config.LR }

// Step applies one Adam update in place.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) error {
	a.step++

	beta1 := a.config.Beta1
	beta2 := a.config.Beta2
	correction1 := 1 - math.Pow(beta1, float64(a.step))
	correction2 := 1 - math.Pow(beta2, float64(a.step))

	for _, p := range a.params {
		raw := p.Raw()
		grad, ok := grads[raw]
		if !ok {
			continue
		}
		if !grad.Shape().Equal(raw.Shape()) {
			return fmt.Errorf("adam: gradient shape %v does not match parameter %q %v",
				grad.Shape(), p.Name(), raw.Shape())
		}

		data := raw.AsFloat32()
		g := grad.AsFloat32()

		m := a.m[raw]
		v := a.v[raw]
		if m == nil {
			m = make([]float32, len(data))
			v = make([]float32, len(data))
			a.m[raw] = m
			a.v[raw] = v
		}

		for i := range data {
			gi := float64(g[i])
			mi := beta1*float64(m[i]) + (1-beta1)*gi
			vi := beta2*float64(v[i]) + (1-beta2)*gi*gi
			m[i] = float32(mi)
			v[i] = float32(vi)

			mHat := mi / correction1
			vHat := vi / correction2
			data[i] -= float32(a.config.LR * mHat / (math.Sqrt(vHat) + a.config.Eps))
		}
	}
	return nil
}
