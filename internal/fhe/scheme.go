package fhe

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

var (
	ErrEmptyBatch        = errors.New("no ciphertexts to sum")
	ErrBatchTooLarge     = errors.New("batch exceeds encoder padding capacity")
	ErrForeignCiphertext = errors.New("ciphertext was not produced by this scheme")
)

// Ciphertext is an encrypted value. The concrete representation is owned by the scheme that produced it.
type Ciphertext interface {
	Level() int
}

// Scheme holds the key material and evaluator of one homomorphic session.
// It is not safe for concurrent use; a session goroutine owns it exclusively.
type Scheme struct {
	ckks      ckks.Parameters
	encoder   *Encoder
	ecd       *ckks.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
	eval      *ckks.Evaluator
	maxBatch  int
}

// NewScheme validates p, then generates a fresh secret key and the encoder for it.
func NewScheme(p Parameters) (*Scheme, error) {
	encoder, err := NewEncoder(p)
	if err != nil {
		return nil, fmt.Errorf("unable to instantiate encoder: %w", err)
	}

	sigma := p.noiseSigma()
	params, err := ckks.NewParametersFromLiteral(ckks.ParametersLiteral{
		LogN:            p.logN(),
		LogQ:            []int{p.logScale() + int(p.PaddingBits) + sumHeadroomBits, p.logScale()},
		LogP:            []int{specialModulusBits},
		Xe:              ring.DiscreteGaussian{Sigma: sigma, Bound: noiseBoundFactor * sigma},
		LogDefaultScale: p.logScale(),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to instantiate scheme parameters: %w", err)
	}

	kgen := ckks.NewKeyGenerator(params)
	sk := kgen.GenSecretKeyNew()

	return &Scheme{
		ckks:      params,
		encoder:   encoder,
		ecd:       ckks.NewEncoder(params),
		encryptor: ckks.NewEncryptor(params, sk),
		decryptor: ckks.NewDecryptor(params, sk),
		eval:      ckks.NewEvaluator(params, nil),
		maxBatch:  p.MaxBatch(),
	}, nil
}

// Encrypt encodes v onto the interval and encrypts it.
func (s *Scheme) Encrypt(v float64) (Ciphertext, error) {
	x, err := s.encoder.Encode(v)
	if err != nil {
		return nil, err
	}

	pt := ckks.NewPlaintext(s.ckks, s.ckks.MaxLevel())
	if err := s.ecd.Encode([]float64{x}, pt); err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	ct := ckks.NewCiphertext(s.ckks, 1, pt.Level())
	if err := s.encryptor.Encrypt(pt, ct); err != nil {
		return nil, fmt.Errorf("failed to encrypt value: %w", err)
	}
	return ct, nil
}

// Sum adds all ciphertexts. The inputs are left untouched.
func (s *Scheme) Sum(cts []Ciphertext) (Ciphertext, error) {
	if len(cts) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(cts) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(cts), s.maxBatch)
	}

	first, err := s.own(cts[0])
	if err != nil {
		return nil, err
	}
	acc := first.CopyNew()
	for _, c := range cts[1:] {
		ct, err := s.own(c)
		if err != nil {
			return nil, err
		}
		if err := s.eval.Add(acc, ct, acc); err != nil {
			return nil, fmt.Errorf("failed to add ciphertexts: %w", err)
		}
	}
	return acc, nil
}

// Scale multiplies the ciphertext by a public constant and rescales the result.
func (s *Scheme) Scale(c Ciphertext, k float64) (Ciphertext, error) {
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("invalid scaling constant %v", k)
	}
	ct, err := s.own(c)
	if err != nil {
		return nil, err
	}

	out := ckks.NewCiphertext(s.ckks, 1, ct.Level())
	if err := s.eval.Mul(ct, k, out); err != nil {
		return nil, fmt.Errorf("failed to multiply ciphertext by constant: %w", err)
	}
	if err := s.eval.Rescale(out, out); err != nil {
		return nil, fmt.Errorf("failed to rescale ciphertext: %w", err)
	}
	return out, nil
}

// Decrypt decrypts the ciphertext and maps the result back onto the encoder interval.
func (s *Scheme) Decrypt(c Ciphertext) (float64, error) {
	ct, err := s.own(c)
	if err != nil {
		return 0, err
	}

	pt := ckks.NewPlaintext(s.ckks, ct.Level())
	s.decryptor.Decrypt(ct, pt)

	values := make([]float64, s.ckks.MaxSlots())
	if err := s.ecd.Decode(pt, values); err != nil {
		return 0, fmt.Errorf("failed to decode plaintext: %w", err)
	}
	return s.encoder.Decode(values[0]), nil
}

func (s *Scheme) own(c Ciphertext) (*rlwe.Ciphertext, error) {
	ct, ok := c.(*rlwe.Ciphertext)
	if !ok || ct == nil {
		return nil, ErrForeignCiphertext
	}
	return ct, nil
}
