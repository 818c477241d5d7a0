package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	commonpb "go.temporal.io/api/common/v1"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, name string, param any, wait bool) error {
	return m.Called(ctx, name, param, wait).Error(0)
}

func quietLogger() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}

func TestMergeConfigureDHCPParamIsSortedUnion(t *testing.T) {
	got := MergeConfigureDHCPParam(
		ConfigureDHCPParam{StaticIPAddrIDs: []int{5, 1}, SubnetIDs: []int{3}},
		ConfigureDHCPParam{StaticIPAddrIDs: []int{1, 2}, SystemIDs: []string{"b", "a"}},
	)

	assert.Equal(t, ConfigureDHCPParam{
		SystemIDs:       []string{"a", "b"},
		SubnetIDs:       []int{3},
		StaticIPAddrIDs: []int{1, 2, 5},
	}, got)
}

func TestRegisterMergesCallsWithTheSameName(t *testing.T) {
	d := NewDispatcher(&mockExecutor{}, quietLogger())
	before := testutil.ToFloat64(callsMerged.WithLabelValues(ConfigureDHCPWorkflowName))

	ConfigureDHCP(d, ConfigureDHCPParam{StaticIPAddrIDs: []int{1}})
	ConfigureDHCP(d, ConfigureDHCPParam{StaticIPAddrIDs: []int{2}})
	d.RegisterOrUpdateWorkflowCall("other", "x", nil, false)

	pending := d.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, ConfigureDHCPWorkflowName, pending[0].Name)
	assert.Equal(t, ConfigureDHCPParam{StaticIPAddrIDs: []int{1, 2}}, pending[0].Param)
	assert.Equal(t, "other", pending[1].Name)
	assert.Equal(t, before+1, testutil.ToFloat64(callsMerged.WithLabelValues(ConfigureDHCPWorkflowName)))
}

func TestRegisterWithoutMergeReplacesAndWaitIsSticky(t *testing.T) {
	d := NewDispatcher(&mockExecutor{}, quietLogger())

	d.RegisterOrUpdateWorkflowCall("deploy", "first", nil, true)
	d.RegisterOrUpdateWorkflowCall("deploy", "second", nil, false)

	pending := d.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "second", pending[0].Param)
	assert.True(t, pending[0].Wait)
}

func TestFlushExecutesOnceInOrder(t *testing.T) {
	exec := &mockExecutor{}
	var order []string
	exec.On("Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { order = append(order, args.String(1)) }).
		Return(nil)
	d := NewDispatcher(exec, quietLogger())

	d.RegisterOrUpdateWorkflowCall("a", 1, nil, false)
	d.RegisterOrUpdateWorkflowCall("b", 2, nil, false)
	d.RegisterOrUpdateWorkflowCall("a", 3, nil, false)

	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Empty(t, d.Pending())

	require.NoError(t, d.Flush(context.Background()))
	exec.AssertNumberOfCalls(t, "Execute", 2)
}

func TestFlushReportsFailuresAndContinues(t *testing.T) {
	exec := &mockExecutor{}
	exec.On("Execute", mock.Anything, "a", mock.Anything, false).Return(errors.New("unavailable"))
	exec.On("Execute", mock.Anything, "b", mock.Anything, false).Return(nil)
	d := NewDispatcher(exec, quietLogger())

	d.RegisterOrUpdateWorkflowCall("a", nil, nil, false)
	d.RegisterOrUpdateWorkflowCall("b", nil, nil, false)

	err := d.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow a")
	exec.AssertExpectations(t)
}

func TestDiscardSendsNothing(t *testing.T) {
	exec := &mockExecutor{}
	d := NewDispatcher(exec, quietLogger())

	ConfigureDHCP(d, ConfigureDHCPParam{SubnetIDs: []int{1}})
	d.Discard()

	require.NoError(t, d.Flush(context.Background()))
	exec.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogExecutorLogsTheCall(t *testing.T) {
	l, hook := logtest.NewNullLogger()

	require.NoError(t, LogExecutor{Log: l}.Execute(context.Background(), "configure-dhcp", ConfigureDHCPParam{}, false))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "configure-dhcp", hook.LastEntry().Data["workflow"])
}

func TestEncryptionCodecRoundTrip(t *testing.T) {
	codec, err := NewEncryptionCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	in := []*commonpb.Payload{{
		Metadata: map[string][]byte{"encoding": []byte("json/plain")},
		Data:     []byte(`{"subnet_ids":[1]}`),
	}}
	enc, err := codec.Encode(in)
	require.NoError(t, err)
	assert.NotEqual(t, in[0].Data, enc[0].Data)

	dec, err := codec.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, in[0].Data, dec[0].Data)
	assert.Equal(t, in[0].Metadata, dec[0].Metadata)
}

func TestEncryptionCodecRejectsShortKeyAndTamperedData(t *testing.T) {
	_, err := NewEncryptionCodec([]byte("short"))
	require.Error(t, err)

	codec, err := NewEncryptionCodec(make([]byte, 32))
	require.NoError(t, err)
	enc, err := codec.Encode([]*commonpb.Payload{{Data: []byte("x")}})
	require.NoError(t, err)
	enc[0].Data[len(enc[0].Data)-1] ^= 0xff

	_, err = codec.Decode(enc)
	assert.Error(t, err)
}
