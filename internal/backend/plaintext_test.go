package backend

import (
	"testing"

	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, b domain.Backend, action string, value float64) domain.Result {
	t.Helper()
	res, err := b.Handle(domain.ActionRequest{Action: action, Value: value})
	require.NoError(t, err)
	return res
}

func TestPlaintext_Initialize(t *testing.T) {
	p := NewPlaintext()
	info, err := p.Initialize("anything at all")
	require.NoError(t, err)
	assert.Equal(t, "session initialized", info)
}

func TestPlaintext_MeanClearsAccumulator(t *testing.T) {
	p := NewPlaintext()

	res := handle(t, p, domain.ActionEncrypt, 10)
	assert.True(t, res.Response.Status)
	assert.Equal(t, 10.0, res.Response.Value)
	handle(t, p, domain.ActionObserve, 20)

	res = handle(t, p, domain.ActionMean, 0)
	assert.True(t, res.Response.Status)
	assert.Equal(t, 15.0, res.Response.Value)
	assert.False(t, res.Terminates)

	res = handle(t, p, domain.ActionMean, 0)
	assert.True(t, res.Response.Status)
	assert.Equal(t, 0.0, res.Response.Value)
	assert.Contains(t, res.Response.StatusMessage, "no data")
}

func TestPlaintext_Shutdown(t *testing.T) {
	res := handle(t, NewPlaintext(), domain.ActionShutdown, 0)
	assert.True(t, res.Terminates)
	assert.True(t, res.Response.Status)
}

func TestPlaintext_UnknownAction(t *testing.T) {
	_, err := NewPlaintext().Handle(domain.ActionRequest{Action: "median"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
	assert.Contains(t, err.Error(), "median")
}
