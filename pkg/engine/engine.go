// Package engine wraps an execution.Backend in a staged state machine:
// Queued -> Running -> (Done | Error), emitted on a bounded channel
// that the RBE service layer drains and converts into Operation
// messages.
package engine

import (
	"context"

	"github.com/google/uuid"

	"golang.org/x/sync/semaphore"

	"github.com/buildbarn/bb-remote-node/pkg/digest"
	"github.com/buildbarn/bb-remote-node/pkg/execution"
	"github.com/buildbarn/bb-remote-node/pkg/util"
)

// eventChannelCapacity bounds the number of in-flight lifecycle events
// per execution. A producer whose consumer has stopped draining blocks
// on a full channel until the context is cancelled; cancellation is
// treated as a client-disconnect and terminates the worker.
const eventChannelCapacity = 32

// Stage tags the lifecycle state carried by a Status event.
type Stage int

const (
	// StageQueued is emitted once setup succeeds and the action
	// digest is known.
	StageQueued Stage = iota
	// StageRunning is emitted immediately before the backend is
	// invoked.
	StageRunning
	// StageDone is a terminal stage: the backend completed and
	// Response is populated.
	StageDone
	// StageError is a terminal stage: either setup or the backend
	// failed and Err is populated.
	StageError
)

// Status is one lifecycle event for a single execution. UUID and
// ActionDigest (when known) are copied into every event belonging to
// that execution.
type Status struct {
	UUID         uuid.UUID
	ActionDigest digest.Digest
	Stage        Stage
	Response     execution.Response
	Err          *execution.Error
}

// SetupFunc resolves an incoming request into the triple an Engine
// needs to drive an execution: the action's own digest, the reduced
// Command, and the resolved DirectoryLayout.
type SetupFunc func(ctx context.Context) (digest.Digest, execution.Command, execution.DirectoryLayout, *execution.Error)

// Engine wraps a Backend in the Queued/Running/Done/Error state
// machine described by the protocol.
type Engine struct {
	backend       execution.Backend
	concurrency   *semaphore.Weighted
	uuidGenerator util.UUIDGenerator
}

// New creates an Engine that dispatches accepted executions to the
// given Backend. At most maximumConcurrentExecutions actions run at
// the same time; additional accepted executions remain in the Queued
// stage until a slot frees up. uuidGenerator is used to assign the
// name under which each execution's Operation is reported.
func New(backend execution.Backend, maximumConcurrentExecutions int64, uuidGenerator util.UUIDGenerator) *Engine {
	return &Engine{
		backend:       backend,
		concurrency:   semaphore.NewWeighted(maximumConcurrentExecutions),
		uuidGenerator: uuidGenerator,
	}
}

// Execute assigns a fresh UUID, spawns an independent worker goroutine,
// and returns a channel on which the caller observes the lifecycle of
// that one execution. Exactly one terminal event (Done or Error) is
// sent before the channel is closed, unless ctx is cancelled first: the
// worker then closes the channel without sending further events.
func (e *Engine) Execute(ctx context.Context, setup SetupFunc) <-chan Status {
	events := make(chan Status, eventChannelCapacity)

	go func() {
		defer close(events)

		id, err := e.uuidGenerator()
		if err != nil {
			trySend(ctx, events, Status{Stage: StageError, Err: execution.NewInternalError("failed to generate operation id: %s", err)})
			return
		}

		actionDigest, command, layout, setupErr := setup(ctx)
		if setupErr != nil {
			trySend(ctx, events, Status{UUID: id, Stage: StageError, Err: setupErr})
			return
		}

		if !trySend(ctx, events, Status{UUID: id, ActionDigest: actionDigest, Stage: StageQueued}) {
			return
		}

		if err := util.AcquireSemaphore(ctx, e.concurrency, 1); err != nil {
			// The client went away while the action sat in
			// the queue.
			return
		}
		defer e.concurrency.Release(1)

		if !trySend(ctx, events, Status{UUID: id, ActionDigest: actionDigest, Stage: StageRunning}) {
			return
		}

		response, execErr := e.backend.RunCommand(ctx, command, layout)
		if execErr != nil {
			trySend(ctx, events, Status{UUID: id, ActionDigest: actionDigest, Stage: StageError, Err: execErr})
			return
		}
		trySend(ctx, events, Status{UUID: id, ActionDigest: actionDigest, Stage: StageDone, Response: response})
	}()

	return events
}

// trySend delivers an event unless the context has been cancelled. A
// full channel blocks the send until a slot frees up or the context is
// cancelled. Cancellation is treated as client-disconnect: trySend
// returns false and the worker stops emitting further events.
func trySend(ctx context.Context, events chan<- Status, status Status) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case events <- status:
		return true
	case <-ctx.Done():
		return false
	}
}
