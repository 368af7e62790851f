package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applicant-tracker/internal/types"
)

func TestSeed(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, Seed(ctx, s, "hashed"))

	user, err := s.GetUserByUsername(ctx, SeedUsername)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Katy Johnson", user.FullName)
	assert.Equal(t, "hashed", user.PasswordHash)

	jobs, err := s.ListJobListings(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Mid-Level Design Engineer", jobs[0].Title)

	top, err := s.TopApplicantsByMatchScore(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 5)
	assert.Equal(t, "Michael Chen", top[0].Name)
	assert.Equal(t, 98, *top[0].MatchScore)
	assert.Equal(t, "David Kim", top[4].Name)

	for _, a := range top {
		analysis, err := s.GetAiAnalysis(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, analysis)
		assert.Equal(t, *a.MatchScore, analysis.Rating)
		for _, rating := range analysis.Skills {
			assert.GreaterOrEqual(t, rating, 7)
			assert.LessOrEqual(t, rating, 9)
		}

		notes, err := s.ListNotes(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	}

	shortlisted, err := s.CountApplicantsByStatus(ctx, types.StatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, 2, shortlisted)
}

func TestSeed_IsIdempotent(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, Seed(ctx, s, "hashed"))
	require.NoError(t, Seed(ctx, s, "hashed"))

	total, err := s.CountApplicants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}
