package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subkassa/autopay/app/models"
)

func TestServiceEnabled(t *testing.T) {
	env := newTestEnv()
	assert.True(t, env.service.Enabled())

	env.gateway.enabled = false
	assert.False(t, env.service.Enabled())

	env.gateway.enabled = true
	env.service.cfg.Enabled = false
	assert.False(t, env.service.Enabled())
}

func TestServiceStartDisabledStaysStopped(t *testing.T) {
	env := newTestEnv()
	env.service.cfg.Enabled = false

	env.service.Start()
	assert.False(t, env.service.IsRunning())
}

func TestServiceStartRunsImmediatePass(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}

	env.service.Start()
	defer env.service.Stop()

	assert.True(t, env.service.IsRunning())
	require.Eventually(t, func() bool {
		return env.gateway.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServiceStopWaitsForPassAndIsIdempotent(t *testing.T) {
	env := newTestEnv()

	env.service.Start()
	assert.True(t, env.service.IsRunning())

	env.service.Stop()
	assert.False(t, env.service.IsRunning())

	// Stopping again is a no-op.
	env.service.Stop()
	assert.False(t, env.service.IsRunning())
}

func TestServiceCanRestart(t *testing.T) {
	env := newTestEnv()

	env.service.Start()
	env.service.Stop()
	env.service.Start()
	assert.True(t, env.service.IsRunning())
	env.service.Stop()
}

func TestServiceDoubleStartIsNoop(t *testing.T) {
	env := newTestEnv()

	env.service.Start()
	env.service.Start()
	assert.True(t, env.service.IsRunning())
	env.service.Stop()
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Hour, cfg.CheckInterval)
	assert.Equal(t, 5*time.Minute, cfg.ChargeLockTTL)
}
