package backend

import "github.com/paarijaat/stickyapp/internal/domain"

// Plaintext accumulates observations in the clear.
type Plaintext struct {
	values []float64
}

var _ domain.Backend = (*Plaintext)(nil)

func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// PlaintextFactory adapts NewPlaintext to domain.BackendFactory.
func PlaintextFactory() domain.Backend {
	return NewPlaintext()
}

func (p *Plaintext) Initialize(string) (string, error) {
	return "session initialized", nil
}

func (p *Plaintext) Handle(req domain.ActionRequest) (domain.Result, error) {
	switch req.Action {
	case domain.ActionEncrypt, domain.ActionObserve:
		p.values = append(p.values, req.Value)
		resp := ok("value %v recorded", req.Value)
		resp.Value = req.Value
		return domain.Result{Response: resp}, nil

	case domain.ActionMean:
		if len(p.values) == 0 {
			return noData(), nil
		}
		var sum float64
		for _, v := range p.values {
			sum += v
		}
		n := len(p.values)
		p.values = p.values[:0]

		mean := sum / float64(n)
		resp := ok("mean action, %d values, sum %v, mean %v", n, sum, mean)
		resp.Value = mean
		return domain.Result{Response: resp}, nil

	case domain.ActionShutdown:
		return shutdown(), nil

	default:
		return domain.Result{}, unknown(req)
	}
}
