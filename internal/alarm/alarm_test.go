package alarm_test

import (
	"testing"

	"github.com/dvoicu/process-simulator/internal/alarm"
	"github.com/dvoicu/process-simulator/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateClassification(t *testing.T) {
	sys := alarm.NewSystem(32.0, -10.0)

	cases := []struct {
		name  string
		value float64
		state core.AlarmState
		text  string
		color string
	}{
		{"well above high", 50.0, core.AlarmCritical, "CRITICAL: HIGH TEMP", "red"},
		{"exactly high", 32.0, core.AlarmCritical, "CRITICAL: HIGH TEMP", "red"},
		{"just below high", 31.999, core.AlarmNormal, "SYSTEM NORMAL", "green"},
		{"mid range", 20.0, core.AlarmNormal, "SYSTEM NORMAL", "green"},
		{"just above low", -9.999, core.AlarmNormal, "SYSTEM NORMAL", "green"},
		{"exactly low", -10.0, core.AlarmWarning, "WARNING: LOW TEMP", "orange"},
		{"well below low", -40.0, core.AlarmWarning, "WARNING: LOW TEMP", "orange"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := sys.Evaluate(tc.value)
			assert.Equal(t, tc.state, ev.State)
			assert.Equal(t, tc.text, ev.Message)
			assert.Equal(t, tc.color, ev.Color)
		})
	}
}

func TestHighLimitTakesPrecedenceWhenLimitsInverted(t *testing.T) {
	// Inverted pair can only come from direct construction; Evaluate must stay total
	sys := alarm.NewSystem(-10.0, 32.0)

	ev := sys.Evaluate(0.0)
	assert.Equal(t, core.AlarmCritical, ev.State, "a value matching both limits must classify as Critical")
}

func TestTriggeredMirrorsLastEvaluation(t *testing.T) {
	sys := alarm.NewSystem(32.0, -10.0)

	sys.Evaluate(20.0)
	assert.False(t, sys.Triggered())

	sys.Evaluate(40.0)
	assert.True(t, sys.Triggered())

	sys.Evaluate(-20.0)
	assert.True(t, sys.Triggered())

	sys.Evaluate(0.0)
	assert.False(t, sys.Triggered(), "a Normal evaluation must clear the flag")
}

func TestSetThresholdsRejectsInvertedPair(t *testing.T) {
	sys := alarm.NewSystem(32.0, -10.0)

	err := sys.SetThresholds(5.0, 10.0)
	require.Error(t, err)

	high, low := sys.Thresholds()
	assert.Equal(t, 32.0, high, "rejected update must keep the previous high limit")
	assert.Equal(t, -10.0, low, "rejected update must keep the previous low limit")

	err = sys.SetThresholds(10.0, 10.0)
	require.Error(t, err, "equal limits must be rejected")

	require.NoError(t, sys.SetThresholds(25.0, 5.0))
	high, low = sys.Thresholds()
	assert.Equal(t, 25.0, high)
	assert.Equal(t, 5.0, low)
}
