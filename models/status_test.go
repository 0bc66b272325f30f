package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/menuqr/menuqr/models"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    models.Status
		to      models.Status
		allowed bool
	}{
		{models.StatusNew, models.StatusProcessing, true},
		{models.StatusNew, models.StatusCancelled, true},
		{models.StatusNew, models.StatusReady, false},
		{models.StatusNew, models.StatusCompleted, false},
		{models.StatusProcessing, models.StatusReady, true},
		{models.StatusProcessing, models.StatusCancelled, true},
		{models.StatusProcessing, models.StatusCompleted, false},
		{models.StatusProcessing, models.StatusNew, false},
		{models.StatusReady, models.StatusCompleted, true},
		{models.StatusReady, models.StatusCancelled, false},
		{models.StatusReady, models.StatusProcessing, false},
		{models.StatusCompleted, models.StatusNew, false},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusNew, false},
		{models.StatusCancelled, models.StatusProcessing, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"transition %s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, models.StatusCompleted.IsTerminal())
	assert.True(t, models.StatusCancelled.IsTerminal())
	assert.False(t, models.StatusNew.IsTerminal())
	assert.False(t, models.StatusProcessing.IsTerminal())
	assert.False(t, models.StatusReady.IsTerminal())

	assert.Empty(t, models.StatusCompleted.AllowedNext())
	assert.Empty(t, models.StatusCancelled.AllowedNext())
}

func TestAllowedNextFromReady(t *testing.T) {
	assert.Equal(t, []models.Status{models.StatusCompleted}, models.StatusReady.AllowedNext())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, models.StatusNew.IsValid())
	assert.False(t, models.Status("paid").IsValid())
	assert.False(t, models.Status("").IsValid())
}
