package backend

import (
	"errors"
	"fmt"

	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/paarijaat/stickyapp/internal/fhe"
)

// Cipher is the subset of fhe.Scheme the homomorphic backend needs.
type Cipher interface {
	Encrypt(v float64) (fhe.Ciphertext, error)
	Sum(cts []fhe.Ciphertext) (fhe.Ciphertext, error)
	Scale(c fhe.Ciphertext, k float64) (fhe.Ciphertext, error)
	Decrypt(c fhe.Ciphertext) (float64, error)
}

// CipherFactory builds the cipher for validated parameters.
type CipherFactory func(fhe.Parameters) (Cipher, error)

// NewScheme is the production CipherFactory.
func NewScheme(p fhe.Parameters) (Cipher, error) {
	s, err := fhe.NewScheme(p)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Homomorphic keeps every observation encrypted and computes the mean
// without decrypting individual values. A plaintext shadow of the values is
// kept alongside for reporting.
type Homomorphic struct {
	newCipher CipherFactory
	cipher    Cipher

	shadow      []float64
	ciphertexts []fhe.Ciphertext
}

var _ domain.Backend = (*Homomorphic)(nil)

func NewHomomorphic(newCipher CipherFactory) *Homomorphic {
	if newCipher == nil {
		newCipher = NewScheme
	}
	return &Homomorphic{newCipher: newCipher}
}

// HomomorphicFactory adapts NewHomomorphic to domain.BackendFactory.
func HomomorphicFactory(newCipher CipherFactory) domain.BackendFactory {
	return func() domain.Backend { return NewHomomorphic(newCipher) }
}

func (h *Homomorphic) Initialize(initMessage string) (string, error) {
	params, err := fhe.ParseParameters(initMessage)
	if err != nil {
		return "", err
	}
	cipher, err := h.newCipher(params)
	if err != nil {
		return "", err
	}
	h.cipher = cipher
	return fmt.Sprintf("session initialized, with parameters: %s", params), nil
}

func (h *Homomorphic) Handle(req domain.ActionRequest) (domain.Result, error) {
	if h.cipher == nil {
		return domain.Result{}, errors.New("homomorphic backend used before initialization")
	}

	switch req.Action {
	case domain.ActionEncrypt, domain.ActionObserve:
		ct, err := h.cipher.Encrypt(req.Value)
		if err != nil {
			return domain.Result{Response: failed("failed to encrypt value: %v", err)}, nil
		}
		h.shadow = append(h.shadow, req.Value)
		h.ciphertexts = append(h.ciphertexts, ct)
		resp := ok("value %v encrypted successfully", req.Value)
		resp.Value = req.Value
		return domain.Result{Response: resp}, nil

	case domain.ActionMean:
		return domain.Result{Response: h.mean()}, nil

	case domain.ActionShutdown:
		return shutdown(), nil

	default:
		return domain.Result{}, unknown(req)
	}
}

// mean consumes the accumulated batch whether or not aggregation succeeds.
func (h *Homomorphic) mean() domain.ActionResponse {
	if len(h.ciphertexts) == 0 {
		return noData().Response
	}
	shadow, cts := h.shadow, h.ciphertexts
	h.shadow, h.ciphertexts = nil, nil

	sum, err := h.cipher.Sum(cts)
	if err != nil {
		return failed("mean action, failed to add encrypted values: %v", err)
	}
	scaled, err := h.cipher.Scale(sum, 1/float64(len(cts)))
	if err != nil {
		return failed("mean action, failed to multiply encrypted sum by a constant: %v", err)
	}
	mean, err := h.cipher.Decrypt(scaled)
	if err != nil {
		return failed("mean action, failed to decrypt mean: %v", err)
	}

	var plainSum float64
	for _, v := range shadow {
		plainSum += v
	}
	plainMean := plainSum / float64(len(shadow))

	resp := ok("mean action, %d values, plaintext sum %v, plaintext mean %v, decrypted mean %v",
		len(shadow), plainSum, plainMean, mean)
	resp.Value = mean
	return resp
}
