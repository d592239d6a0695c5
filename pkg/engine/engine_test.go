package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/buildbarn/bb-remote-node/pkg/digest"
	"github.com/buildbarn/bb-remote-node/pkg/engine"
	"github.com/buildbarn/bb-remote-node/pkg/execution"
)

type fakeBackend struct {
	response execution.Response
	err      *execution.Error
}

func (b *fakeBackend) RunCommand(ctx context.Context, command execution.Command, layout execution.DirectoryLayout) (execution.Response, *execution.Error) {
	return b.response, b.err
}

func drain(events <-chan engine.Status) []engine.Status {
	var statuses []engine.Status
	for status := range events {
		statuses = append(statuses, status)
	}
	return statuses
}

func TestEngineSuccessfulExecutionEmitsQueuedRunningDone(t *testing.T) {
	actionDigest := digest.MustNewDigest("8aad87ae61d3df48ff6447ca5f5b8670b9d9d080dbbf735be109530a445330e3", 10)
	backend := &fakeBackend{response: execution.Response{ExitCode: 0}}
	e := engine.New(backend, 4, uuid.NewRandom)

	events := e.Execute(context.Background(), func(ctx context.Context) (digest.Digest, execution.Command, execution.DirectoryLayout, *execution.Error) {
		return actionDigest, execution.Command{Arguments: []string{"/bin/true"}}, execution.DirectoryLayout{}, nil
	})

	statuses := drain(events)
	require.Len(t, statuses, 3)
	require.Equal(t, engine.StageQueued, statuses[0].Stage)
	require.Equal(t, engine.StageRunning, statuses[1].Stage)
	require.Equal(t, engine.StageDone, statuses[2].Stage)
	for _, s := range statuses {
		require.Equal(t, actionDigest, s.ActionDigest)
	}
}

func TestEngineSetupFailureEmitsOnlyError(t *testing.T) {
	backend := &fakeBackend{}
	e := engine.New(backend, 4, uuid.NewRandom)

	setupErr := execution.NewInvalidArgumentError("no action digest specified")
	events := e.Execute(context.Background(), func(ctx context.Context) (digest.Digest, execution.Command, execution.DirectoryLayout, *execution.Error) {
		return digest.BadDigest, execution.Command{}, execution.DirectoryLayout{}, setupErr
	})

	statuses := drain(events)
	require.Len(t, statuses, 1)
	require.Equal(t, engine.StageError, statuses[0].Stage)
	require.Same(t, setupErr, statuses[0].Err)
}

func TestEngineBackendFailureEmitsQueuedRunningError(t *testing.T) {
	actionDigest := digest.MustNewDigest("8aad87ae61d3df48ff6447ca5f5b8670b9d9d080dbbf735be109530a445330e3", 10)
	backendErr := execution.NewInternalError("boom")
	backend := &fakeBackend{err: backendErr}
	e := engine.New(backend, 4, uuid.NewRandom)

	events := e.Execute(context.Background(), func(ctx context.Context) (digest.Digest, execution.Command, execution.DirectoryLayout, *execution.Error) {
		return actionDigest, execution.Command{Arguments: []string{"/bin/true"}}, execution.DirectoryLayout{}, nil
	})

	statuses := drain(events)
	require.Len(t, statuses, 3)
	require.Equal(t, engine.StageQueued, statuses[0].Stage)
	require.Equal(t, engine.StageRunning, statuses[1].Stage)
	require.Equal(t, engine.StageError, statuses[2].Stage)
	require.Same(t, backendErr, statuses[2].Err)
}

func TestEngineStopsSendingWhenContextCancelled(t *testing.T) {
	backend := &fakeBackend{response: execution.Response{ExitCode: 0}}
	e := engine.New(backend, 4, uuid.NewRandom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := e.Execute(ctx, func(ctx context.Context) (digest.Digest, execution.Command, execution.DirectoryLayout, *execution.Error) {
		return digest.BadDigest, execution.Command{Arguments: []string{"/bin/true"}}, execution.DirectoryLayout{}, nil
	})

	statuses := drain(events)
	require.Less(t, len(statuses), 3)
}

type countingBackend struct {
	lock      sync.Mutex
	active    int
	maxActive int
}

func (b *countingBackend) RunCommand(ctx context.Context, command execution.Command, layout execution.DirectoryLayout) (execution.Response, *execution.Error) {
	b.lock.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.lock.Unlock()

	time.Sleep(10 * time.Millisecond)

	b.lock.Lock()
	b.active--
	b.lock.Unlock()
	return execution.Response{}, nil
}

func TestEngineLimitsConcurrentExecutions(t *testing.T) {
	backend := &countingBackend{}
	e := engine.New(backend, 1, uuid.NewRandom)

	var channels []<-chan engine.Status
	for i := 0; i < 5; i++ {
		channels = append(channels, e.Execute(context.Background(), func(ctx context.Context) (digest.Digest, execution.Command, execution.DirectoryLayout, *execution.Error) {
			return digest.BadDigest, execution.Command{Arguments: []string{"/bin/true"}}, execution.DirectoryLayout{}, nil
		}))
	}
	for _, events := range channels {
		statuses := drain(events)
		require.Equal(t, engine.StageDone, statuses[len(statuses)-1].Stage)
	}

	require.Equal(t, 1, backend.maxActive)
}
