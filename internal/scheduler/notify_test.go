package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifierDropsBelowThreshold(t *testing.T) {
	var delivered []Alert
	n := &Notifier{Threshold: UrgencyHigh, Sink: func(a Alert) { delivered = append(delivered, a) }}

	n.Notify(Alert{Key: "k1", Urgency: UrgencyMedium}, time.Now())
	require.Empty(t, delivered)

	n.Notify(Alert{Key: "k2", Urgency: UrgencyHigh}, time.Now())
	require.Len(t, delivered, 1)
}

func TestNotifierSuppressesDuringQuietHours(t *testing.T) {
	var delivered []Alert
	n := &Notifier{
		Threshold:  UrgencyLow,
		QuietStart: "22:00",
		QuietEnd:   "06:00",
		Sink:       func(a Alert) { delivered = append(delivered, a) },
	}

	night := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	n.Notify(Alert{Key: "k1", Urgency: UrgencyHigh}, night)
	require.Empty(t, delivered)

	n.Notify(Alert{Key: "k2", Urgency: UrgencyCritical}, night)
	require.Len(t, delivered, 1)
}

func TestNotifierSuppressesRepeatWithinWindow(t *testing.T) {
	var delivered []Alert
	n := &Notifier{
		Threshold:     UrgencyLow,
		SuppressAfter: time.Hour,
		Sink:          func(a Alert) { delivered = append(delivered, a) },
	}

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.Notify(Alert{Key: "same", Urgency: UrgencyHigh}, base)
	n.Notify(Alert{Key: "same", Urgency: UrgencyHigh}, base.Add(10*time.Minute))
	require.Len(t, delivered, 1)

	n.Notify(Alert{Key: "same", Urgency: UrgencyHigh}, base.Add(2*time.Hour))
	require.Len(t, delivered, 2)
}

func TestInQuietHoursWrapsPastMidnight(t *testing.T) {
	require.True(t, inQuietHours("22:00", "06:00", time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)))
	require.True(t, inQuietHours("22:00", "06:00", time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC)))
	require.False(t, inQuietHours("22:00", "06:00", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
}
