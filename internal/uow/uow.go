// Package uow runs request handlers inside one unit of work: a database
// transaction plus the workflow calls collected while it was open.
package uow

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"regiond/internal/services"
	"regiond/internal/workflow"
)

type Manager struct {
	db       *gorm.DB
	executor workflow.Executor
	log      logrus.FieldLogger
}

func NewManager(db *gorm.DB, executor workflow.Executor, log logrus.FieldLogger) *Manager {
	return &Manager{db: db, executor: executor, log: log}
}

// Do runs fn in a new transaction with a fresh service collection. When fn
// fails the transaction rolls back and the collected workflow calls are
// dropped; otherwise the calls are dispatched after commit. Dispatch
// failures are logged and do not fail the unit.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, svc *services.Collection) error) error {
	log := m.log.WithField("unit", uuid.NewString())
	dispatcher := workflow.NewDispatcher(m.executor, log)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		svc := services.NewCollection(tx, dispatcher)
		defer svc.Close()
		return fn(ctx, svc)
	})
	if err != nil {
		dispatcher.Discard()
		return err
	}

	if err := dispatcher.Flush(ctx); err != nil {
		log.WithError(err).Warn("workflow calls of committed unit failed")
	}
	return nil
}
