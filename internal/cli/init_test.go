package cli

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestShutdownContext_StopIsQuiet(t *testing.T) {
	var out lockedBuffer
	ctx, stop := ShutdownContext(context.Background(), slog.New(slog.NewTextHandler(&out, nil)))
	stop()

	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	assert.NotContains(t, out.String(), "Shutdown signal received")
}

func TestShutdownContext_ParentCancelIsQuiet(t *testing.T) {
	var out lockedBuffer
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := ShutdownContext(parent, slog.New(slog.NewTextHandler(&out, nil)))
	defer stop()
	cancel()

	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, out.String())
}

func TestShutdownContext_SignalIsLogged(t *testing.T) {
	var out lockedBuffer
	ctx, stop := ShutdownContext(context.Background(), slog.New(slog.NewTextHandler(&out, nil)))
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
	assert.Contains(t, out.String(), "Shutdown signal received")
	assert.Contains(t, out.String(), "signal=terminated")
	assert.Contains(t, out.String(), "operation=shutdown")
}
