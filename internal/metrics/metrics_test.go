package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestPaymentInitiationsCounter(t *testing.T) {
	before := testutil.ToFloat64(PaymentInitiations.WithLabelValues("test_success"))
	PaymentInitiations.WithLabelValues("test_success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentInitiations.WithLabelValues("test_success")))
}
