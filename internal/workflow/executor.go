package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/client"
)

// Executor starts workflows on the engine.
type Executor interface {
	Execute(ctx context.Context, name string, param any, wait bool) error
}

// LogExecutor only logs the calls. Used when the workflow engine is
// disabled.
type LogExecutor struct {
	Log logrus.FieldLogger
}

func (e LogExecutor) Execute(_ context.Context, name string, param any, wait bool) error {
	e.Log.WithFields(logrus.Fields{
		"workflow": name,
		"param":    fmt.Sprintf("%+v", param),
		"wait":     wait,
	}).Info("workflow engine disabled, call dropped")
	return nil
}

// TemporalExecutor starts one workflow execution per call.
type TemporalExecutor struct {
	client    client.Client
	taskQueue string
}

func NewTemporalExecutor(c client.Client, taskQueue string) *TemporalExecutor {
	return &TemporalExecutor{client: c, taskQueue: taskQueue}
}

func (e *TemporalExecutor) Execute(ctx context.Context, name string, param any, wait bool) error {
	run, err := e.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("%s:%s", name, uuid.NewString()),
		TaskQueue: e.taskQueue,
	}, name, param)
	if err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	if !wait {
		return nil
	}
	if err := run.Get(ctx, nil); err != nil {
		return fmt.Errorf("wait %s (run %s): %w", name, run.GetRunID(), err)
	}
	return nil
}
