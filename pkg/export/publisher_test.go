package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battalert/battalert/pkg/power"
)

func TestPublisherCachesWithoutBus(t *testing.T) {
	p := NewPublisher()

	// Updates before any bus is attached must be safe and retained.
	p.SetPowerLevel(power.LevelVeryLow)
	p.SetIsWarning(true)

	assert.Equal(t, power.LevelVeryLow, p.level)
	assert.True(t, p.warning)
}

func TestSetBusNilIsIdempotent(t *testing.T) {
	p := NewPublisher()

	require.NoError(t, p.SetBus(nil))
	require.NoError(t, p.SetBus(nil))

	// Publishing with no battery attached and no bus stays a no-op.
	p.SetIsWarning(false)
	p.SetPowerLevel(power.LevelOK)
}
