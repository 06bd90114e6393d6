// Package fhetest provides a plaintext stand-in for fhe.Scheme. Test use only.
package fhetest

import (
	"errors"

	"github.com/paarijaat/stickyapp/internal/fhe"
)

// Ciphertext carries its value in the clear.
type Ciphertext struct {
	Value float64
}

func (*Ciphertext) Level() int { return 0 }

var ErrInjected = errors.New("injected failure")

// Scheme performs every operation on clear values and can be told to fail any stage.
type Scheme struct {
	FailEncrypt bool
	FailSum     bool
	FailScale   bool
	FailDecrypt bool

	Encrypted int
}

func (s *Scheme) Encrypt(v float64) (fhe.Ciphertext, error) {
	if s.FailEncrypt {
		return nil, ErrInjected
	}
	s.Encrypted++
	return &Ciphertext{Value: v}, nil
}

func (s *Scheme) Sum(cts []fhe.Ciphertext) (fhe.Ciphertext, error) {
	if s.FailSum {
		return nil, ErrInjected
	}
	if len(cts) == 0 {
		return nil, fhe.ErrEmptyBatch
	}
	var sum float64
	for _, c := range cts {
		ct, ok := c.(*Ciphertext)
		if !ok {
			return nil, fhe.ErrForeignCiphertext
		}
		sum += ct.Value
	}
	return &Ciphertext{Value: sum}, nil
}

func (s *Scheme) Scale(c fhe.Ciphertext, k float64) (fhe.Ciphertext, error) {
	if s.FailScale {
		return nil, ErrInjected
	}
	ct, ok := c.(*Ciphertext)
	if !ok {
		return nil, fhe.ErrForeignCiphertext
	}
	return &Ciphertext{Value: ct.Value * k}, nil
}

func (s *Scheme) Decrypt(c fhe.Ciphertext) (float64, error) {
	if s.FailDecrypt {
		return 0, ErrInjected
	}
	ct, ok := c.(*Ciphertext)
	if !ok {
		return 0, fhe.ErrForeignCiphertext
	}
	return ct.Value, nil
}
