package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ClaimsDecidedTotal.WithLabelValues(DecisionAutoRejected))
	ClaimsDecidedTotal.WithLabelValues(DecisionAutoRejected).Add(2)
	after := testutil.ToFloat64(ClaimsDecidedTotal.WithLabelValues(DecisionAutoRejected))

	if after-before != 2 {
		t.Errorf("expected counter to grow by 2, got %v", after-before)
	}
}

func TestOperationErrorsLabels(t *testing.T) {
	c := OperationErrorsTotal.WithLabelValues("submit_claim", "conflict")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}
