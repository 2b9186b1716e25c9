package projects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveToPostedStampsCompletion(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := Project{Status: StatusApproval}

	completed := p.MoveTo(StatusPosted, now)
	assert.True(t, completed)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, now, *p.CompletedAt)

	// moving within Postado does not re-stamp
	completed = p.MoveTo(StatusPosted, now.Add(time.Hour))
	assert.False(t, completed)
	assert.Equal(t, now, *p.CompletedAt)
}

func TestMoveAwayFromPostedClearsCompletion(t *testing.T) {
	now := time.Now()
	p := Project{Status: StatusApproval}
	p.MoveTo(StatusPosted, now)

	completed := p.MoveTo(StatusAdjustments, now)
	assert.False(t, completed)
	assert.Nil(t, p.CompletedAt)
}

func TestStatusValid(t *testing.T) {
	for _, s := range Pipeline {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("Arquivado").Valid())
}
