package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/therapist-discovery/backend/internal/domain/entities"
)

func candidate(id string, total float64, distance *float64, wait *int) entities.ScoredCandidate {
	return entities.ScoredCandidate{
		Profile:         listed(id, func(p *entities.TherapistProfile) { p.EstimatedWaitWeeks = wait }),
		TotalScore:      total,
		HardScore:       total,
		MatchedCriteria: []string{CriterionProblemArea},
		DistanceKm:      distance,
	}
}

func TestRank_TieBreaks(t *testing.T) {
	candidates := []entities.ScoredCandidate{
		candidate("z-low", 1000, nil, nil),
		candidate("y-nodistance", 1500, nil, nil),
		candidate("x-far", 1500, ptrFloat(12), nil),
		candidate("w-near", 1500, ptrFloat(3), ptrInt(9)),
		candidate("b-nowait", 1600, nil, nil),
		candidate("c-longwait", 1600, nil, ptrInt(4)),
		candidate("a-nowait", 1600, nil, ptrInt(0)),
	}

	results := Rank(candidates, 10)

	assert.Equal(t, []string{
		"a-nowait", "b-nowait", "c-longwait", "w-near", "x-far", "y-nodistance", "z-low",
	}, resultIDs(results))
}

func TestRank_TruncatesWithoutPadding(t *testing.T) {
	candidates := []entities.ScoredCandidate{
		candidate("a", 3, nil, nil),
		candidate("b", 2, nil, nil),
		candidate("c", 1, nil, nil),
	}

	assert.Equal(t, []string{"a", "b"}, resultIDs(Rank(candidates, 2)))
	assert.Len(t, Rank(candidates, 10), 3)
	assert.Empty(t, Rank(nil, 10))
}

func TestRank_DoesNotReorderInput(t *testing.T) {
	candidates := []entities.ScoredCandidate{
		candidate("a", 1, nil, nil),
		candidate("b", 2, nil, nil),
	}

	Rank(candidates, 10)

	assert.Equal(t, "a", candidates[0].Profile.ID)
}

func TestRank_Highlights(t *testing.T) {
	c := candidate("p", 1615, ptrFloat(2.34), nil)
	c.MatchedCriteria = []string{CriterionProblemArea, CriterionLanguagePrimary, CriterionProximity, CriterionGender}

	results := Rank([]entities.ScoredCandidate{c}, 1)

	require.Len(t, results, 1)
	assert.Equal(t, []string{"Spezialisiert auf Ihr Anliegen", "Spricht Ihre Sprache", "2.3 km entfernt"}, results[0].Highlights)
	assert.Equal(t, c.MatchedCriteria, results[0].MatchedCriteria)
	assert.Equal(t, "p", results[0].Slug)
}

func TestCriterionLabel_Unknown(t *testing.T) {
	assert.Equal(t, "custom", CriterionLabel("custom"))
}
