package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"honeypot-lab/internal/domain/models"
)

func TestObserveTurn(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	intel := models.NewIntelligenceRecord()
	intel.Add(models.IntelPhoneNumbers, "9876543210")
	intel.Add(models.IntelBankAccounts, "9876543210", "123456789012")

	m.ObserveTurn(models.TurnResponse{IsScam: true, ExtractedIntelligence: intel}, time.Millisecond)
	m.ObserveTurn(models.TurnResponse{ExtractedIntelligence: models.NewIntelligenceRecord()}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TurnsTotal.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TurnsTotal.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractedTotal.WithLabelValues("phone_numbers")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExtractedTotal.WithLabelValues("bank_account_numbers")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ExtractedTotal.WithLabelValues("links")))
}

func TestObserveHTTP(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveHTTP("POST", "/honeypot", 200, 5*time.Millisecond)
	m.ObserveHTTP("POST", "/honeypot", 401, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/honeypot", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/honeypot", "401")))
}
