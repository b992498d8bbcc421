package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/reminder"
)

func TestObserveReminderRun(t *testing.T) {
	c := NewCollector()
	okBefore := testutil.ToFloat64(ReminderRunsTotal.WithLabelValues("ok"))
	lateBefore := testutil.ToFloat64(RemindersTotal.WithLabelValues(string(notification.KindLate)))

	start := time.Now()
	c.ObserveReminderRun(&reminder.RunReport{StartedAt: start, FinishedAt: start.Add(time.Second), Late: 3, DueSoon: 1})

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ReminderRunsTotal.WithLabelValues("ok")))
	assert.Equal(t, lateBefore+3, testutil.ToFloat64(RemindersTotal.WithLabelValues(string(notification.KindLate))))
}

func TestObserveContendedRunDoesNotCountReminders(t *testing.T) {
	c := NewCollector()
	before := testutil.ToFloat64(RemindersTotal.WithLabelValues(string(notification.KindDueSoon)))

	c.ObserveReminderRun(&reminder.RunReport{Contended: true, DueSoon: 4})

	assert.Equal(t, before, testutil.ToFloat64(RemindersTotal.WithLabelValues(string(notification.KindDueSoon))))
}

func TestDeliveryAndDepth(t *testing.T) {
	c := NewCollector()
	before := testutil.ToFloat64(DeliveriesTotal.WithLabelValues("late", "sent"))

	c.ObserveDelivery(notification.KindLate, "sent")
	c.SetOutboxDepth(7)

	assert.Equal(t, before+1, testutil.ToFloat64(DeliveriesTotal.WithLabelValues("late", "sent")))
	assert.Equal(t, float64(7), testutil.ToFloat64(OutboxDepth))
}
