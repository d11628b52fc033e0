//go:build unix

package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_ProcessSignal(t *testing.T) {
	g, _, exits := newGuard(t)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)
	defer signal.Stop(signals)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = g.Watch(ctx, signals) }()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGHUP))

	require.Eventually(t, func() bool { return len(exits.Codes()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{0}, exits.Codes())
	assert.Equal(t, StateTerminating, g.State())
}
