package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestMailbox(t *testing.T, cfg Config) *Mailbox {
	t.Helper()
	w := testWorld(t)
	mb, err := Open(w, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mb.Close() })
	return mb
}

func TestOpenValidation(t *testing.T) {
	_, err := Open(nil, Config{})
	require.Error(t, err)

	w := testWorld(t)
	mb, err := Open(w, Config{Tag: 3})
	require.NoError(t, err)
	require.Equal(t, w.Rank(), mb.Rank())
	require.Equal(t, w.Size(), mb.Size())

	require.NoError(t, mb.Close())
	require.NoError(t, mb.Close())
}

func TestRoundTripSelf(t *testing.T) {
	mb := openTestMailbox(t, Config{Tag: 11})

	payload := []byte("hello-mailbox")
	buf := make([]byte, 64)
	rf, err := mb.ReceiveAsync(buf)
	require.NoError(t, err)
	sf, err := mb.SendAsync(mb.Rank(), payload)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sf.Await(ctx))
	n, err := rf.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, buf[:n])
	require.Equal(t, mb.Rank(), rf.Source())

	stats := mb.Stats()
	require.Equal(t, uint64(1), stats.SendPosted)
	require.Equal(t, uint64(1), stats.SendCompleted)
	require.Equal(t, uint64(1), stats.ReceivePosted)
	require.Equal(t, uint64(1), stats.ReceiveMatched)
	require.Zero(t, stats.SendErrored)
	require.Zero(t, stats.ReceiveErrored)
}

func TestBlockingSendReceive(t *testing.T) {
	mb := openTestMailbox(t, Config{Tag: 12})

	sf, err := mb.SendAsync(mb.Rank(), []byte{0xCA, 0xFE})
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, source, err := mb.Receive(context.Background(), buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, mb.Rank(), source)
	require.Equal(t, []byte{0xCA, 0xFE}, buf[:2])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sf.Await(ctx))

	rf, err := mb.ReceiveAsync(make([]byte, 16))
	require.NoError(t, err)
	require.NoError(t, mb.Send(context.Background(), mb.Rank(), []byte("ping")))
	n, err = rf.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestArgumentValidation(t *testing.T) {
	mb := openTestMailbox(t, Config{Tag: 13})

	_, err := mb.SendAsync(mb.Rank(), nil)
	require.Error(t, err)
	_, err = mb.ReceiveAsync(nil)
	require.Error(t, err)
}

func TestHandlers(t *testing.T) {
	mb := openTestMailbox(t, Config{Tag: 14})

	sends := make(chan SendCompletion, 4)
	recvs := make(chan ReceiveCompletion, 4)
	unregisterSend := mb.RegisterSendHandler(func(c SendCompletion) { sends <- c })
	defer unregisterSend()
	unregisterRecv := mb.RegisterReceiveHandler(func(c ReceiveCompletion) { recvs <- c })
	defer unregisterRecv()

	payload := []byte("handler-payload")
	rf, err := mb.ReceiveAsync(make([]byte, 64))
	require.NoError(t, err)
	sf, err := mb.SendAsync(mb.Rank(), payload)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sf.Await(ctx))
	_, err = rf.Await(ctx)
	require.NoError(t, err)

	select {
	case c := <-sends:
		require.NoError(t, c.Err)
		require.Equal(t, len(payload), c.Size)
		require.Equal(t, mb.Rank(), c.Peer)
	case <-time.After(10 * time.Second):
		t.Fatal("send handler never invoked")
	}
	select {
	case c := <-recvs:
		require.NoError(t, c.Err)
		require.Equal(t, payload, c.Payload)
		require.Equal(t, mb.Rank(), c.Source)
	case <-time.After(10 * time.Second):
		t.Fatal("receive handler never invoked")
	}
}

func TestOnCompleteCallback(t *testing.T) {
	mb := openTestMailbox(t, Config{Tag: 15})

	done := make(chan error, 1)
	lengths := make(chan int, 1)

	rf, err := mb.ReceiveAsync(make([]byte, 8))
	require.NoError(t, err)
	rf.OnComplete(func(n int, err error) {
		lengths <- n
		done <- err
	})

	sf, err := mb.SendAsync(mb.Rank(), []byte{1, 2, 3})
	require.NoError(t, err)
	sf.OnComplete(func(err error) { done <- err })

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("completion callback never invoked")
		}
	}
	require.Equal(t, 3, <-lengths)
}

func TestCloseResolvesPending(t *testing.T) {
	w := testWorld(t)
	mb, err := Open(w, Config{Tag: 16})
	require.NoError(t, err)

	rf, err := mb.ReceiveAsync(make([]byte, 8))
	require.NoError(t, err)

	require.NoError(t, mb.Close())

	_, err = rf.Await(context.Background())
	require.ErrorIs(t, err, ErrClosed)

	_, err = mb.SendAsync(mb.Rank(), []byte{1})
	require.ErrorIs(t, err, ErrClosed)
	_, err = mb.ReceiveAsync(make([]byte, 8))
	require.ErrorIs(t, err, ErrClosed)
	err = mb.Send(context.Background(), mb.Rank(), []byte{1})
	require.ErrorIs(t, err, ErrClosed)
}

func TestTagIsolation(t *testing.T) {
	a := openTestMailbox(t, Config{Tag: 17})
	b := openTestMailbox(t, Config{Tag: 18})

	idle, err := b.ReceiveAsync(make([]byte, 8))
	require.NoError(t, err)

	rf, err := a.ReceiveAsync(make([]byte, 8))
	require.NoError(t, err)
	sf, err := a.SendAsync(a.Rank(), []byte("tagged"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sf.Await(ctx))
	n, err := rf.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, n)

	shortCtx, shortCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer shortCancel()
	_, err = idle.Await(shortCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitHonoursContext(t *testing.T) {
	mb := openTestMailbox(t, Config{Tag: 19})

	rf, err := mb.ReceiveAsync(make([]byte, 8))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rf.Await(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReceiveTimeout(t *testing.T) {
	mb := openTestMailbox(t, Config{Tag: 20, Timeout: 150 * time.Millisecond})

	_, _, err := mb.Receive(context.Background(), make([]byte, 8))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDeliveryQueueOrder(t *testing.T) {
	q := newDeliveryQueue()
	for i := 0; i < 100; i++ {
		q.push(i)
	}
	for i := 0; i < 100; i++ {
		item, ok := q.pop()
		require.True(t, ok)
		require.Equal(t, i, item)
	}
	q.close()
	_, ok := q.pop()
	require.False(t, ok)
}

func TestDeliveryQueueBlocksUntilPush(t *testing.T) {
	q := newDeliveryQueue()
	var wg sync.WaitGroup
	wg.Add(1)
	var got any
	go func() {
		defer wg.Done()
		got, _ = q.pop()
	}()
	time.Sleep(10 * time.Millisecond)
	q.push("late")
	wg.Wait()
	require.Equal(t, "late", got)

	q.close()
	_, ok := q.pop()
	require.False(t, ok)
}

func TestDeliveryQueueDrainsAfterClose(t *testing.T) {
	q := newDeliveryQueue()
	q.push("first")
	q.push("second")
	q.close()

	item, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, "first", item)
	item, ok = q.pop()
	require.True(t, ok)
	require.Equal(t, "second", item)
	_, ok = q.pop()
	require.False(t, ok)
}

func TestFutureWithoutEngine(t *testing.T) {
	op := newOperation(nil, OperationSend, nil, 3, 5, nil)
	f := &SendFuture{op: op}

	completed := make(chan error, 1)
	f.OnComplete(func(err error) { completed <- err })

	op.complete(operationResult{length: 5, err: errors.New("boom")})
	op.complete(operationResult{length: 99})

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel never closed")
	}
	require.EqualError(t, f.Await(context.Background()), "boom")
	require.EqualError(t, <-completed, "boom")

	// Late registration still fires with the original result.
	late := make(chan error, 1)
	f.OnComplete(func(err error) { late <- err })
	require.EqualError(t, <-late, "boom")
}

func TestOperationErrorUnwrap(t *testing.T) {
	inner := errors.New("engine fault")
	err := OperationError{Kind: OperationReceive, Err: inner}
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "receive")
}
