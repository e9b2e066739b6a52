package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues(ResultSuccess))
	LoginAttempts.WithLabelValues(ResultSuccess).Inc()
	if got := testutil.ToFloat64(LoginAttempts.WithLabelValues(ResultSuccess)); got != before+1 {
		t.Errorf("LoginAttempts = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(Notifications.WithLabelValues("registration_submitted", ResultFailure))
	Notifications.WithLabelValues("registration_submitted", ResultFailure).Inc()
	if got := testutil.ToFloat64(Notifications.WithLabelValues("registration_submitted", ResultFailure)); got != before+1 {
		t.Errorf("Notifications = %v, want %v", got, before+1)
	}
}
