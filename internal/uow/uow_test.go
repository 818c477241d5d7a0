package uow

import (
	"context"
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"regiond/internal/db/dbtest"
	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/repositories"
	"regiond/internal/services"
	"regiond/internal/workflow"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, name string, param any, wait bool) error {
	return m.Called(ctx, name, param, wait).Error(0)
}

func newManager(t *testing.T) (*Manager, *mockExecutor) {
	db := dbtest.Open(t)
	log, _ := logtest.NewNullLogger()
	exec := &mockExecutor{}
	return NewManager(db, exec, log), exec
}

func createVLAN(ctx context.Context, svc *services.Collection) error {
	f, err := svc.Fabrics.Create(ctx, repositories.Resource{"name": "f0"})
	if err != nil {
		return err
	}
	_, err = svc.VLANs.Create(ctx, repositories.Resource{"vid": 1, "dhcp_on": true, "fabric_id": f.ID})
	return err
}

func TestCommittedUnitDispatchesOnce(t *testing.T) {
	m, exec := newManager(t)
	exec.On("Execute", mock.Anything, workflow.ConfigureDHCPWorkflowName, mock.Anything, false).Return(nil).Once()

	require.NoError(t, m.Do(context.Background(), createVLAN))

	exec.AssertExpectations(t)
}

func TestFailedUnitRollsBackAndSendsNothing(t *testing.T) {
	m, exec := newManager(t)
	boom := errors.New("boom")

	err := m.Do(context.Background(), func(ctx context.Context, svc *services.Collection) error {
		if err := createVLAN(ctx, svc); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	exec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, m.Do(context.Background(), func(ctx context.Context, svc *services.Collection) error {
		rows, err := svc.Fabrics.GetMany(ctx, filters.QuerySpec{})
		assert.Empty(t, rows)
		return err
	}))
}

func TestDispatchFailureDoesNotFailCommittedUnit(t *testing.T) {
	m, exec := newManager(t)
	exec.On("Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("engine down"))

	require.NoError(t, m.Do(context.Background(), createVLAN))

	require.NoError(t, m.Do(context.Background(), func(ctx context.Context, svc *services.Collection) error {
		rows, err := svc.VLANs.GetMany(ctx, filters.Query(filters.VLANClauses.WithDHCPOn(true)))
		assert.Len(t, rows, 1)
		return err
	}))
}

func TestUnitsDoNotShareCaches(t *testing.T) {
	m, exec := newManager(t)
	exec.On("Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	var first *models.Fabric

	require.NoError(t, m.Do(context.Background(), func(ctx context.Context, svc *services.Collection) error {
		var err error
		first, err = svc.Fabrics.GetDefaultFabric(ctx)
		return err
	}))
	assert.Nil(t, first)

	require.NoError(t, m.Do(context.Background(), createVLAN))
	require.NoError(t, m.Do(context.Background(), func(ctx context.Context, svc *services.Collection) error {
		def, err := svc.Fabrics.GetDefaultFabric(ctx)
		assert.NotNil(t, def)
		return err
	}))
}
