package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	startErr error
	stopped  atomic.Bool
	done     chan struct{}
}

func newFakeService(startErr error) *fakeService {
	return &fakeService{startErr: startErr, done: make(chan struct{})}
}

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-s.done
	return nil
}

func (s *fakeService) Shutdown(ctx context.Context) error {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.done)
	}
	return nil
}

func TestRunServices(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("StopsOnCancel", func(t *testing.T) {
		api, metrics := newFakeService(nil), newFakeService(nil)
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- runServices(ctx, logger, []namedService{{"api", api}, {"metrics", metrics}})
		}()
		cancel()

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("services did not stop")
		}
		assert.True(t, api.stopped.Load())
		assert.True(t, metrics.stopped.Load())
	})

	t.Run("FailureStopsOthers", func(t *testing.T) {
		api, metrics := newFakeService(nil), newFakeService(errors.New("address in use"))

		err := runServices(context.Background(), logger, []namedService{{"api", api}, {"metrics", metrics}})

		assert.EqualError(t, err, "metrics: address in use")
		assert.True(t, api.stopped.Load())
	})
}
