package fhe

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/bits"
)

const (
	// scaleBaseBits is added to the precision to obtain the CKKS scale, leaving room for encryption noise.
	scaleBaseBits = 24
	// sumHeadroomBits is reserved in the first modulus for the magnitude growth of summed ciphertexts.
	sumHeadroomBits = 12
	// maxModulusBits is the largest prime size Lattigo will generate.
	maxModulusBits = 60
	// specialModulusBits is the key-switching prime size.
	specialModulusBits = 61

	minLogN = 10
	maxLogN = 16

	// defaultNoiseSigma is the smallest error standard deviation used, the usual RLWE default.
	defaultNoiseSigma = 3.2
	noiseBoundFactor  = 6
)

var (
	ErrInvalidInterval  = errors.New("encoder interval is empty")
	ErrPrecisionBudget  = errors.New("encoder precision and padding exceed the modulus budget")
	ErrInvalidDimension = errors.New("secret key dimension must be a power of two")
)

// Parameters describe the encoder and key of one homomorphic session.
type Parameters struct {
	EncoderMin    float64 `json:"encoder_min"`
	EncoderMax    float64 `json:"encoder_max"`
	PrecisionBits uint    `json:"encoder_precision_bits"`
	PaddingBits   uint    `json:"encoder_padding_bits"`
	Dimensions    uint    `json:"secret_key_dimensions"`
	Log2StdDev    int     `json:"secret_key_log2_std_dev"`
}

// DefaultParameters returns the parameters used for every field absent from an init message.
func DefaultParameters() Parameters {
	return Parameters{
		EncoderMin:    0,
		EncoderMax:    100,
		PrecisionBits: 16,
		PaddingBits:   4,
		Dimensions:    1024,
		Log2StdDev:    -40,
	}
}

// ParseParameters decodes an init message, applying defaults to absent fields.
func ParseParameters(message string) (Parameters, error) {
	p := DefaultParameters()
	if err := json.Unmarshal([]byte(message), &p); err != nil {
		return Parameters{}, fmt.Errorf("failed to decode encryption parameters: %w", err)
	}
	return p, nil
}

// Validate checks the parameter combination without generating any key material.
func (p Parameters) Validate() error {
	if math.IsNaN(p.EncoderMin) || math.IsNaN(p.EncoderMax) || math.IsInf(p.EncoderMin, 0) || math.IsInf(p.EncoderMax, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidInterval)
	}
	if p.EncoderMax <= p.EncoderMin {
		return fmt.Errorf("%w: min %v must be below max %v", ErrInvalidInterval, p.EncoderMin, p.EncoderMax)
	}
	if p.PrecisionBits == 0 {
		return fmt.Errorf("%w: precision must be at least one bit", ErrPrecisionBudget)
	}
	if budget := uint(maxModulusBits - scaleBaseBits - sumHeadroomBits); p.PrecisionBits+p.PaddingBits > budget {
		return fmt.Errorf("%w: precision %d + padding %d > %d", ErrPrecisionBudget, p.PrecisionBits, p.PaddingBits, budget)
	}
	if p.Dimensions == 0 || bits.OnesCount(p.Dimensions) != 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimension, p.Dimensions)
	}
	if logN := p.logN(); logN < minLogN || logN > maxLogN {
		return fmt.Errorf("%w between 2^%d and 2^%d: got %d", ErrInvalidDimension, minLogN, maxLogN, p.Dimensions)
	}
	return nil
}

// Quantum is the width of one quantization step of the encoder.
func (p Parameters) Quantum() float64 {
	return (p.EncoderMax - p.EncoderMin) / math.Exp2(float64(p.PrecisionBits))
}

// MaxBatch is the largest number of ciphertexts that can be summed without overflowing the modulus.
func (p Parameters) MaxBatch() int {
	return 1 << (p.PaddingBits + sumHeadroomBits - 1)
}

func (p Parameters) logN() int {
	return bits.Len(p.Dimensions) - 1
}

func (p Parameters) logScale() int {
	return int(p.PrecisionBits) + scaleBaseBits
}

// noiseSigma expresses the requested standard deviation, given relative to one unit of the
// normalized interval, in units of the CKKS scale. It is capped at half a quantization step.
func (p Parameters) noiseSigma() float64 {
	log2 := min(p.Log2StdDev, p.maxLog2StdDev())
	return math.Max(defaultNoiseSigma, math.Exp2(float64(log2+p.logScale())))
}

func (p Parameters) maxLog2StdDev() int {
	return -int(p.PrecisionBits) - 1
}

func (p Parameters) String() string {
	return fmt.Sprintf("min=%v max=%v precision=%d padding=%d dimensions=%d log2_std_dev=%d",
		p.EncoderMin, p.EncoderMax, p.PrecisionBits, p.PaddingBits, p.Dimensions, p.Log2StdDev)
}
