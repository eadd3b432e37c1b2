package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/pipeline"
)

func TestOnTransition(t *testing.T) {
	m := New()

	m.OnTransition(pipeline.Transition{From: pipeline.AwaitingCapture, To: pipeline.ReadyToClassify})
	m.OnTransition(pipeline.Transition{From: pipeline.ReadyToClassify, To: pipeline.Classifying})
	m.OnTransition(pipeline.Transition{From: pipeline.Classifying, To: pipeline.Minting, Elapsed: 2 * time.Second})
	m.OnTransition(pipeline.Transition{From: pipeline.Minting, To: pipeline.Succeeded, Elapsed: time.Second})
	m.OnTransition(pipeline.Transition{From: pipeline.Classifying, To: pipeline.Failed, Err: models.NonAnimalError("a chair")})
	m.OnTransition(pipeline.Transition{From: pipeline.Minting, To: pipeline.Failed, Err: models.MintServiceError("rate limited", nil)})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("classifying", "minting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("minted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("non_animal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("mint_error")))
	assert.Equal(t, 4, testutil.CollectAndCount(m.stageDuration))
}

func TestSessionGauge(t *testing.T) {
	m := New()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
}

func TestHandler(t *testing.T) {
	m := New()
	m.OnTransition(pipeline.Transition{From: pipeline.AwaitingCapture, To: pipeline.ReadyToClassify})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wildmint_session_transitions_total{from="awaiting_capture",to="ready_to_classify"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRegistryGathersPipelineFamilies(t *testing.T) {
	m := New()
	m.SessionOpened()
	m.OnTransition(pipeline.Transition{From: pipeline.Minting, To: pipeline.Succeeded, Elapsed: time.Second})

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["wildmint_session_transitions_total"])
	assert.True(t, names["wildmint_sessions_active"])
	assert.True(t, names["go_goroutines"])
}
