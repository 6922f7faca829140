package optim

import (
	"fmt"

	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/tensor"
)

// SGDConfig holds stochastic gradient descent hyperparameters.
type SGDConfig struct {
	LR       float64
	Momentum float64 // 0 disables the velocity term
}

// SGD implements stochastic gradient descent with optional momentum:
//
//	v = momentum*v + g
//	p = p - lr*v
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	config     SGDConfig
	velocities map[*tensor.RawTensor][]float32
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return &SGD[B]{
		params:     params,
		config:     config,
		velocities: make(map[*tensor.RawTensor][]float32),
	}
}

// LR returns the learning rate.
func (s *SGD[B]) LR() float64 { return s.config.LR }

// Step applies one SGD update in place.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) error {
	for _, p := range s.params {
		raw := p.Raw()
		grad, ok := grads[raw]
		if !ok {
			continue
		}
		if !grad.Shape().Equal(raw.Shape()) {
			return fmt.Errorf("sgd: gradient shape %v does not match parameter %q %v",
				grad.Shape(), p.Name(), raw.Shape())
		}

		data := raw.AsFloat32()
		g := grad.AsFloat32()
		lr := float32(s.config.LR)

		if s.config.Momentum == 0 {
			for i := range data {
				data[i] -= lr * g[i]
			}
			continue
		}

		v := s.velocities[raw]
		if v == nil {
			v = make([]float32, len(data))
			s.velocities[raw] = v
		}
		momentum := float32(s.config.Momentum)
		for i := range data {
			v[i] = momentum*v[i] + g[i]
			data[i] -= lr * v[i]
		}
	}
	return nil
}
