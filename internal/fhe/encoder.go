package fhe

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfRange = errors.New("value outside encoder interval")

// Encoder maps values of [min, max] onto [0, 1], quantized to the configured precision.
type Encoder struct {
	min    float64
	width  float64
	levels float64
}

// NewEncoder validates the interval and precision of p.
func NewEncoder(p Parameters) (*Encoder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{
		min:    p.EncoderMin,
		width:  p.EncoderMax - p.EncoderMin,
		levels: math.Exp2(float64(p.PrecisionBits)),
	}, nil
}

// Encode returns the quantized normalized form of v.
func (e *Encoder) Encode(v float64) (float64, error) {
	if math.IsNaN(v) || v < e.min || v > e.min+e.width {
		return 0, fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, v, e.min, e.min+e.width)
	}
	x := (v - e.min) / e.width
	return math.Round(x*e.levels) / e.levels, nil
}

// Decode maps a normalized value back onto the interval. Means of encoded values stay inside [0, 1],
// so no range check is applied here.
func (e *Encoder) Decode(x float64) float64 {
	return e.min + x*e.width
}

// Quantum is the width of one quantization step.
func (e *Encoder) Quantum() float64 {
	return e.width / e.levels
}
