package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "duediligence/pkg/platform/audit"
)

func TestAppendDerivesCategory(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, audit.Event{Subject: "a", Action: string(audit.EventDecisionMade)}))
	require.NoError(t, s.Append(ctx, audit.Event{Subject: "b", Action: string(audit.EventChecklistUpdated)}))
	require.NoError(t, s.Append(ctx, audit.Event{Subject: "a", Action: string(audit.EventAccountActivated)}))

	got, err := s.ListBySubject(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, audit.CategoryCompliance, got[0].Category)
	assert.Equal(t, string(audit.EventAccountActivated), got[1].Action)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, audit.CategoryOperations, all[1].Category)

	s.Clear()
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
