package ecs

import "context"

// System is a unit of per-frame behavior. Query and Singleton fields on a
// system struct are bound by the Scheduler at registration and refreshed
// right before each Execute call.
type System interface {
	Execute(frame *UpdateFrame)
}

// UpdateFrame is handed to every system for one tick of the scheduler.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
	Context   context.Context
}

func newUpdateFrame(ctx context.Context, dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		Storage:   storage,
		Context:   ctx,
	}
}

// fork returns a frame sharing everything but the command buffer.
func (f *UpdateFrame) fork() *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: f.DeltaTime,
		Commands:  newCommands(),
		Storage:   f.Storage,
		Context:   f.Context,
	}
}

// Executor runs a batch of tasks, possibly concurrently, and waits for all
// of them. core.ThreadPool satisfies it.
type Executor interface {
	Run(ctx context.Context, tasks ...func(context.Context) error) error
}
