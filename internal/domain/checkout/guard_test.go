package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingInterceptor records install/remove calls.
type countingInterceptor struct {
	installs int
	removes  int
	reasons  []string
	err      error
}

func (c *countingInterceptor) Install(reason string) (func(), error) {
	if c.err != nil {
		return nil, c.err
	}
	c.installs++
	c.reasons = append(c.reasons, reason)
	return func() { c.removes++ }, nil
}

func TestHandoffGuard_ArmDisarm(t *testing.T) {
	interceptor := &countingInterceptor{}
	guard := NewHandoffGuard(interceptor)

	require.NoError(t, guard.Arm("payment in progress"))
	assert.True(t, guard.Armed())
	assert.Equal(t, []string{"payment in progress"}, interceptor.reasons)

	guard.Disarm()
	assert.False(t, guard.Armed())
	assert.Equal(t, 1, interceptor.removes)
}

func TestHandoffGuard_DisarmExactlyOnce(t *testing.T) {
	interceptor := &countingInterceptor{}
	guard := NewHandoffGuard(interceptor)
	require.NoError(t, guard.Arm("hold"))

	// every exit path may call Disarm; the remover must fire once
	guard.Disarm()
	guard.Disarm()
	guard.Disarm()
	assert.Equal(t, 1, interceptor.removes)
}

func TestHandoffGuard_RearmIsNoOp(t *testing.T) {
	interceptor := &countingInterceptor{}
	guard := NewHandoffGuard(interceptor)

	require.NoError(t, guard.Arm("first"))
	require.NoError(t, guard.Arm("second"))
	assert.Equal(t, 1, interceptor.installs)
}

func TestHandoffGuard_ArmAgainAfterDisarm(t *testing.T) {
	interceptor := &countingInterceptor{}
	guard := NewHandoffGuard(interceptor)

	require.NoError(t, guard.Arm("first"))
	guard.Disarm()
	require.NoError(t, guard.Arm("retry"))
	assert.True(t, guard.Armed())
	assert.Equal(t, 2, interceptor.installs)
	assert.Equal(t, 1, interceptor.removes)
}

func TestHandoffGuard_NoInterceptor(t *testing.T) {
	guard := NewHandoffGuard(nil)
	assert.ErrorIs(t, guard.Arm("hold"), ErrGuardNotConfigured)
	assert.False(t, guard.Armed())
}

func TestHandoffGuard_InstallFailure(t *testing.T) {
	boom := errors.New("boom")
	guard := NewHandoffGuard(&countingInterceptor{err: boom})
	assert.ErrorIs(t, guard.Arm("hold"), boom)
	assert.False(t, guard.Armed())
}

func TestHandoffGuard_DisarmWithoutArm(t *testing.T) {
	guard := NewHandoffGuard(&countingInterceptor{})
	assert.NotPanics(t, func() { guard.Disarm() })
}
