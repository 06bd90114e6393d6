package session

import (
	"context"
	"testing"
	"time"

	"github.com/paarijaat/stickyapp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_TryPostFull(t *testing.T) {
	mb := newMailbox("open1", domain.KindPlaintext, 2)

	_, err := mb.TryPost(domain.Execute("a"))
	require.NoError(t, err)
	_, err = mb.TryPost(domain.Execute("b"))
	require.NoError(t, err)

	_, err = mb.TryPost(domain.Execute("c"))
	assert.ErrorIs(t, err, domain.ErrMailboxFull)
	assert.Equal(t, 2, mb.Len())
	assert.Equal(t, 2, mb.Cap())
}

func TestMailbox_PostWaitsUntilContextEnds(t *testing.T) {
	mb := newMailbox("open1", domain.KindPlaintext, 1)
	_, err := mb.TryPost(domain.Execute("a"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = mb.Post(ctx, domain.Execute("b"))
	assert.ErrorIs(t, err, domain.ErrMailboxFull)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMailbox_PostProceedsWhenSpaceFrees(t *testing.T) {
	mb := newMailbox("open1", domain.KindPlaintext, 1)
	_, err := mb.TryPost(domain.Execute("a"))
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		<-mb.queue
	}()

	p, err := mb.Post(context.Background(), domain.Execute("b"))
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestMailbox_ClosedAfterExit(t *testing.T) {
	mb := newMailbox("open1", domain.KindPlaintext, 4)
	close(mb.done)

	_, err := mb.TryPost(domain.Execute("a"))
	assert.ErrorIs(t, err, domain.ErrMailboxClosed)
	_, err = mb.Post(context.Background(), domain.Execute("a"))
	assert.ErrorIs(t, err, domain.ErrMailboxClosed)
}

func TestMailbox_ClosedAfterClose(t *testing.T) {
	mb := newMailbox("open1", domain.KindPlaintext, 4)
	mb.Close()
	mb.Close()

	_, err := mb.TryPost(domain.Execute("a"))
	assert.ErrorIs(t, err, domain.ErrMailboxClosed)
}

func TestPending_Await(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		mb := newMailbox("open1", domain.KindPlaintext, 1)
		p, err := mb.TryPost(domain.Execute("a"))
		require.NoError(t, err)

		env := <-mb.queue
		env.reply <- domain.Reply{Payload: "pong"}

		reply, err := p.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "pong", reply.Payload)
	})

	t.Run("reply written before exit", func(t *testing.T) {
		mb := newMailbox("open1", domain.KindPlaintext, 1)
		p, err := mb.TryPost(domain.Stop())
		require.NoError(t, err)

		env := <-mb.queue
		env.reply <- domain.Reply{Status: domain.StatusTerminated}
		close(mb.done)

		reply, err := p.Await(context.Background())
		require.NoError(t, err)
		assert.True(t, reply.Terminated())
	})

	t.Run("exit without reply", func(t *testing.T) {
		mb := newMailbox("open1", domain.KindPlaintext, 1)
		p, err := mb.TryPost(domain.Execute("a"))
		require.NoError(t, err)
		close(mb.done)

		_, err = p.Await(context.Background())
		assert.ErrorIs(t, err, domain.ErrReplyDropped)
	})

	t.Run("caller gives up", func(t *testing.T) {
		mb := newMailbox("open1", domain.KindPlaintext, 1)
		p, err := mb.TryPost(domain.Execute("a"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = p.Await(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
