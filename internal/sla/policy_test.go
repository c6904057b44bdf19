package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/sla-service/internal/domain"
)

func TestPolicyHoursFor(t *testing.T) {
	policy := NewPolicy(nil, nil)

	urgent := policy.HoursFor(domain.TicketPriorityUrgent, domain.SLAKindResponse)
	require.NotNil(t, urgent)
	assert.Equal(t, 1, *urgent)

	low := policy.HoursFor(domain.TicketPriorityLow, domain.SLAKindResolution)
	require.NotNil(t, low)
	assert.Equal(t, 2160, *low)

	assert.Nil(t, policy.HoursFor(domain.TicketPriorityFeature, domain.SLAKindResolution))
	assert.NotNil(t, policy.HoursFor(domain.TicketPriorityFeature, domain.SLAKindResponse))
}

func TestPolicyUnknownPriorityFallsBackToMedium(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	policy := NewPolicy(nil, zap.New(core))

	got := policy.HoursFor("critical-ish", domain.SLAKindResolution)
	want := policy.HoursFor(domain.TicketPriorityMedium, domain.SLAKindResolution)
	require.NotNil(t, got)
	assert.Equal(t, *want, *got)

	entries := logs.FilterMessage("unknown ticket priority; using medium SLA targets").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "critical-ish", entries[0].ContextMap()["priority"])
}
