package adaptive

import "math"

// ItemParams are the 3PL item response theory parameters of a question.
// Difficulty is on the ability scale (roughly -3..3), Discrimination controls
// slope, Guessing is the lower asymptote.
type ItemParams struct {
	Difficulty     float64
	Discrimination float64
	Guessing       float64
}

// ItemResponse is one scored response used for ability estimation.
type ItemResponse struct {
	Item    ItemParams
	Correct bool
}

// ProbabilityCorrect returns P(correct | ability) under the 3PL model:
// P = c + (1-c) / (1 + e^(-a(theta-b)))
func ProbabilityCorrect(ability float64, item ItemParams) float64 {
	a := item.Discrimination
	if a == 0 {
		a = 1
	}
	exponent := -a * (ability - item.Difficulty)
	if exponent > 700 {
		return item.Guessing
	}
	return item.Guessing + (1-item.Guessing)/(1+math.Exp(exponent))
}

// Information returns the Fisher information of an item at an ability level.
func Information(ability float64, item ItemParams) float64 {
	a := item.Discrimination
	if a == 0 {
		a = 1
	}
	p := ProbabilityCorrect(ability, item)
	q := 1 - p

	if p <= item.Guessing || p >= 1 || q <= 0 {
		return 0
	}

	dp := a * p * q / (1 - item.Guessing)
	return dp * dp / (p * q)
}

const (
	maxEstimateIterations = 10
	estimateTolerance     = 0.001

	// DefaultStandardError is reported when no information is available.
	DefaultStandardError = 2.0
)

// EstimateAbility computes the maximum likelihood ability estimate and its
// standard error via Newton-Raphson. With no responses it returns the initial
// ability and the default standard error.
func EstimateAbility(responses []ItemResponse, initialAbility float64) (ability, stdErr float64) {
	if len(responses) == 0 {
		return initialAbility, DefaultStandardError
	}

	ability = initialAbility

	for i := 0; i < maxEstimateIterations; i++ {
		var first, second float64

		for _, r := range responses {
			a := r.Item.Discrimination
			if a == 0 {
				a = 1
			}
			p := ProbabilityCorrect(ability, r.Item)
			q := 1 - p

			if p <= estimateTolerance || q <= estimateTolerance {
				continue
			}
			if r.Correct {
				first += a * q
			} else {
				first -= a * p
			}
			second -= a * a * p * q
		}

		if math.Abs(second) <= estimateTolerance {
			break
		}
		delta := first / second
		ability -= delta
		if math.Abs(delta) < estimateTolerance {
			break
		}
	}

	var information float64
	for _, r := range responses {
		information += Information(ability, r.Item)
	}
	if information <= 0 {
		return ability, DefaultStandardError
	}
	return ability, 1 / math.Sqrt(information)
}

// DifficultyScale maps a categorical difficulty and an empirical difficulty
// index (share of correct responses) onto the IRT ability scale. Unasked
// questions fall back to the categorical anchor.
func DifficultyScale(level string, difficultyIndex float64) float64 {
	var anchor float64
	switch level {
	case "easy":
		anchor = -1.0
	case "hard":
		anchor = 1.0
	default:
		anchor = 0.0
	}

	// Shift the anchor by how much harder or easier the question has proven
	// empirically; an index of 0.5 leaves it unchanged.
	return anchor + (0.5-difficultyIndex)*2
}
