package backend

import (
	"errors"
	"testing"

	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/paarijaat/stickyapp/internal/fhe"
	"github.com/paarijaat/stickyapp/internal/fhe/fhetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeHomomorphic(t *testing.T, fake *fhetest.Scheme) *Homomorphic {
	t.Helper()
	h := NewHomomorphic(func(fhe.Parameters) (Cipher, error) { return fake, nil })
	_, err := h.Initialize("{}")
	require.NoError(t, err)
	return h
}

func TestHomomorphic_InitializeWithDefaults(t *testing.T) {
	var got fhe.Parameters
	h := NewHomomorphic(func(p fhe.Parameters) (Cipher, error) {
		got = p
		return &fhetest.Scheme{}, nil
	})

	info, err := h.Initialize(`{"encoder_max": 50}`)
	require.NoError(t, err)
	assert.Contains(t, info, "session initialized")

	want := fhe.DefaultParameters()
	want.EncoderMax = 50
	assert.Equal(t, want, got)
}

func TestHomomorphic_InitializeFailures(t *testing.T) {
	h := NewHomomorphic(nil)
	_, err := h.Initialize("not json")
	assert.Error(t, err)

	h = NewHomomorphic(nil)
	_, err = h.Initialize(`{"encoder_min": 5, "encoder_max": 1}`)
	assert.ErrorIs(t, err, fhe.ErrInvalidInterval)

	h = NewHomomorphic(func(fhe.Parameters) (Cipher, error) { return nil, errors.New("no keys") })
	_, err = h.Initialize("{}")
	assert.EqualError(t, err, "no keys")
}

func TestHomomorphic_HandleBeforeInitialize(t *testing.T) {
	_, err := NewHomomorphic(nil).Handle(domain.ActionRequest{Action: domain.ActionMean})
	assert.Error(t, err)
}

func TestHomomorphic_Mean(t *testing.T) {
	fake := &fhetest.Scheme{}
	h := newFakeHomomorphic(t, fake)

	handle(t, h, domain.ActionEncrypt, 10)
	handle(t, h, domain.ActionObserve, 20)
	assert.Equal(t, 2, fake.Encrypted)

	res := handle(t, h, domain.ActionMean, 0)
	assert.True(t, res.Response.Status)
	assert.Equal(t, 15.0, res.Response.Value)
	assert.Contains(t, res.Response.StatusMessage, "plaintext mean 15")

	res = handle(t, h, domain.ActionMean, 0)
	assert.True(t, res.Response.Status)
	assert.Equal(t, 0.0, res.Response.Value)
	assert.Contains(t, res.Response.StatusMessage, "no data")
}

func TestHomomorphic_FailedEncryptIsNotRecorded(t *testing.T) {
	fake := &fhetest.Scheme{}
	h := newFakeHomomorphic(t, fake)

	handle(t, h, domain.ActionEncrypt, 10)
	fake.FailEncrypt = true
	res := handle(t, h, domain.ActionEncrypt, 90)
	assert.False(t, res.Response.Status)
	assert.Contains(t, res.Response.StatusMessage, "failed to encrypt")
	fake.FailEncrypt = false

	res = handle(t, h, domain.ActionMean, 0)
	assert.Equal(t, 10.0, res.Response.Value)
}

func TestHomomorphic_FailedMeanConsumesBatch(t *testing.T) {
	tests := []struct {
		name   string
		inject func(s *fhetest.Scheme)
		want   string
	}{
		{"sum", func(s *fhetest.Scheme) { s.FailSum = true }, "failed to add"},
		{"scale", func(s *fhetest.Scheme) { s.FailScale = true }, "failed to multiply"},
		{"decrypt", func(s *fhetest.Scheme) { s.FailDecrypt = true }, "failed to decrypt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fhetest.Scheme{}
			h := newFakeHomomorphic(t, fake)
			handle(t, h, domain.ActionEncrypt, 1)
			handle(t, h, domain.ActionEncrypt, 2)

			tt.inject(fake)
			res := handle(t, h, domain.ActionMean, 0)
			assert.False(t, res.Response.Status)
			assert.Contains(t, res.Response.StatusMessage, tt.want)

			*fake = fhetest.Scheme{}
			res = handle(t, h, domain.ActionMean, 0)
			assert.True(t, res.Response.Status)
			assert.Contains(t, res.Response.StatusMessage, "no data")
		})
	}
}

func TestHomomorphic_ShutdownAndUnknown(t *testing.T) {
	h := newFakeHomomorphic(t, &fhetest.Scheme{})

	_, err := h.Handle(domain.ActionRequest{Action: "divide"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	res := handle(t, h, domain.ActionShutdown, 0)
	assert.True(t, res.Terminates)
}

func TestHomomorphic_RealSchemeRoundTrip(t *testing.T) {
	h := NewHomomorphic(nil)
	_, err := h.Initialize(`{"encoder_min": 0, "encoder_max": 100}`)
	require.NoError(t, err)

	for _, v := range []float64{10, 20, 33.5} {
		res := handle(t, h, domain.ActionEncrypt, v)
		require.True(t, res.Response.Status, res.Response.StatusMessage)
	}

	res := handle(t, h, domain.ActionEncrypt, 101)
	assert.False(t, res.Response.Status)

	res = handle(t, h, domain.ActionMean, 0)
	require.True(t, res.Response.Status, res.Response.StatusMessage)
	assert.InDelta(t, 63.5/3, res.Response.Value, fhe.DefaultParameters().Quantum())
}
