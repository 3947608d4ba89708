package adaptive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbabilityCorrect(t *testing.T) {
	item := ItemParams{Difficulty: 0, Discrimination: 1}

	// Ability equal to difficulty gives 50% without guessing.
	assert.InDelta(t, 0.5, ProbabilityCorrect(0, item), 0.001)

	// Monotonic in ability.
	low := ProbabilityCorrect(-2, item)
	high := ProbabilityCorrect(2, item)
	assert.Less(t, low, 0.5)
	assert.Greater(t, high, 0.5)

	// Guessing raises the floor.
	guess := ItemParams{Difficulty: 0, Discrimination: 1, Guessing: 0.25}
	assert.Greater(t, ProbabilityCorrect(-10, guess), 0.2)
	assert.InDelta(t, 0.625, ProbabilityCorrect(0, guess), 0.001)
}

func TestProbabilityCorrect_ZeroDiscriminationDefaults(t *testing.T) {
	// A zero discrimination would make the item flat; it defaults to 1.
	item := ItemParams{Difficulty: 0}
	assert.InDelta(t, 0.5, ProbabilityCorrect(0, item), 0.001)
	assert.Greater(t, ProbabilityCorrect(1, item), 0.5)
}

func TestInformation_PeaksNearDifficulty(t *testing.T) {
	item := ItemParams{Difficulty: 0.5, Discrimination: 1}

	atDifficulty := Information(0.5, item)
	farAway := Information(3.5, item)

	assert.Greater(t, atDifficulty, farAway)
	assert.InDelta(t, 0.25, atDifficulty, 0.001) // a^2 * p * q at p = q = 0.5
}

func TestEstimateAbility_NoResponses(t *testing.T) {
	ability, stdErr := EstimateAbility(nil, 0.3)
	assert.Equal(t, 0.3, ability)
	assert.Equal(t, DefaultStandardError, stdErr)
}

func TestEstimateAbility_MovesWithPerformance(t *testing.T) {
	items := []ItemParams{
		{Difficulty: -1, Discrimination: 1},
		{Difficulty: 0, Discrimination: 1},
		{Difficulty: 1, Discrimination: 1},
	}

	var allCorrect, allWrong []ItemResponse
	for _, item := range items {
		allCorrect = append(allCorrect, ItemResponse{Item: item, Correct: true})
		allWrong = append(allWrong, ItemResponse{Item: item, Correct: false})
	}

	high, _ := EstimateAbility(allCorrect, 0)
	low, _ := EstimateAbility(allWrong, 0)

	assert.Greater(t, high, 0.0)
	assert.Less(t, low, 0.0)
	assert.False(t, math.IsNaN(high))
	assert.False(t, math.IsNaN(low))
}

func TestEstimateAbility_MixedResponsesShrinkError(t *testing.T) {
	var responses []ItemResponse
	for i := 0; i < 10; i++ {
		responses = append(responses, ItemResponse{
			Item:    ItemParams{Difficulty: 0, Discrimination: 1},
			Correct: i%2 == 0,
		})
	}

	_, stdErr := EstimateAbility(responses, 0)
	assert.Less(t, stdErr, DefaultStandardError)
	assert.Greater(t, stdErr, 0.0)
}

func TestDifficultyScale(t *testing.T) {
	// Neutral empirical index keeps the categorical anchors.
	assert.InDelta(t, -1.0, DifficultyScale("easy", 0.5), 0.001)
	assert.InDelta(t, 0.0, DifficultyScale("medium", 0.5), 0.001)
	assert.InDelta(t, 1.0, DifficultyScale("hard", 0.5), 0.001)

	// A question everyone misses scales harder.
	assert.Greater(t, DifficultyScale("medium", 0.1), 0.0)
	// A question everyone gets right scales easier.
	assert.Less(t, DifficultyScale("hard", 0.9), 1.0)
}
