package adaptive

import (
	"testing"

	"github.com/error-404/learning-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_StartsAtMedium(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, models.DifficultyMedium, e.Difficulty())

	e.StartLesson("Pandas Basics")
	assert.Equal(t, models.DifficultyMedium, e.Difficulty())
}

func TestEngine_EscalatesAfterTwoCorrectMedium(t *testing.T) {
	e := NewEngine()
	e.StartLesson("Pandas Basics")

	e.Record(true, 10)
	res := e.Record(true, 12)

	assert.Equal(t, models.DifficultyHard, res.NextDifficulty)
	assert.Equal(t, models.DifficultyHard, e.Difficulty())
}

func TestEngine_DropsToEasyOnMissedMediumWindow(t *testing.T) {
	e := NewEngine()
	e.StartLesson("NumPy Arrays")

	e.Record(true, 10)
	res := e.Record(false, 20)

	assert.Equal(t, models.DifficultyEasy, res.NextDifficulty)
}

func TestEngine_EasyLadder(t *testing.T) {
	t.Run("recovers to medium after two correct", func(t *testing.T) {
		e := NewEngine()
		e.StartLesson("SQL Joins")

		// Miss the medium window to land on easy.
		e.Record(false, 10)
		e.Record(true, 10)
		require.Equal(t, models.DifficultyEasy, e.Difficulty())

		e.Record(true, 8)
		res := e.Record(true, 9)
		assert.Equal(t, models.DifficultyMedium, res.NextDifficulty)
	})

	t.Run("stays easy while struggling", func(t *testing.T) {
		e := NewEngine()
		e.StartLesson("SQL Joins")

		e.Record(false, 10)
		e.Record(true, 10)
		require.Equal(t, models.DifficultyEasy, e.Difficulty())

		e.Record(true, 8)
		res := e.Record(false, 30)
		assert.Equal(t, models.DifficultyEasy, res.NextDifficulty)
	})
}

func TestEngine_HardLadder(t *testing.T) {
	setupHard := func(t *testing.T) *Engine {
		e := NewEngine()
		e.StartLesson("Gradient Descent")
		e.Record(true, 10)
		e.Record(true, 10)
		require.Equal(t, models.DifficultyHard, e.Difficulty())
		return e
	}

	t.Run("stays hard with one correct in window", func(t *testing.T) {
		e := setupHard(t)
		e.Record(false, 40)
		res := e.Record(true, 35)
		assert.Equal(t, models.DifficultyHard, res.NextDifficulty)
	})

	t.Run("falls back to medium when window ends on wrong streak", func(t *testing.T) {
		e := setupHard(t)
		// First wrong, then correct resets the lesson streak, then make a
		// fresh engine path: wrong + wrong would terminate the lesson, so
		// use a lesson restart to exercise just the ladder.
		e.StartLesson("Gradient Descent II")
		e.Record(true, 10)
		e.Record(true, 10)
		require.Equal(t, models.DifficultyHard, e.Difficulty())

		e.Record(true, 20)
		res := e.Record(false, 50)
		// Window ended with streakCorrect == 0 -> back to medium.
		assert.Equal(t, models.DifficultyMedium, res.NextDifficulty)
	})
}

func TestEngine_DifficultyNeverLeavesLadder(t *testing.T) {
	// Drive the engine through an arbitrary answer pattern and check the
	// difficulty is always one of the three levels.
	e := NewEngine()
	e.StartLesson("Mixed")

	pattern := []bool{true, true, true, true, false, true, false, false, true, true, true, false, true}
	for i, correct := range pattern {
		res := e.Record(correct, float64(5+i))
		assert.True(t, models.ValidDifficulty(res.NextDifficulty),
			"difficulty %q left the ladder at step %d", res.NextDifficulty, i)
	}
}

func TestEngine_TerminatesLessonAfterTwoConsecutiveWrong(t *testing.T) {
	e := NewEngine()
	e.StartLesson("Regularization")

	res := e.Record(false, 30)
	assert.False(t, res.LessonTerminated)

	res = e.Record(false, 25)
	assert.True(t, res.LessonTerminated)
	assert.True(t, e.Lesson("Regularization").Terminated)
}

func TestEngine_CorrectAnswerResetsWrongStreak(t *testing.T) {
	e := NewEngine()
	e.StartLesson("Decision Trees")

	e.Record(false, 30)
	e.Record(true, 10)
	res := e.Record(false, 30)

	assert.False(t, res.LessonTerminated)
	assert.False(t, e.Lesson("Decision Trees").Terminated)
}

func TestEngine_WrongStreakResetsOnNewLesson(t *testing.T) {
	e := NewEngine()
	e.StartLesson("Lesson A")
	e.Record(false, 30)

	e.StartLesson("Lesson B")
	res := e.Record(false, 30)

	assert.False(t, res.LessonTerminated)
}

func TestEngine_BucketCountersAndAccuracy(t *testing.T) {
	e := NewEngine()
	e.StartLesson("Linear Models")

	e.Record(true, 10)  // medium
	e.Record(false, 20) // medium -> easy
	e.Record(true, 5)   // easy

	tracker := e.Lesson("Linear Models")
	medium := tracker.Buckets[models.DifficultyMedium]
	easy := tracker.Buckets[models.DifficultyEasy]

	assert.Equal(t, 2, medium.Total)
	assert.Equal(t, 1, medium.Correct)
	assert.Equal(t, 1, easy.Total)
	assert.Equal(t, 1, easy.Correct)

	assert.InDelta(t, 50.0, medium.Accuracy(), 0.001)
	assert.InDelta(t, 100.0, easy.Accuracy(), 0.001)
	assert.InDelta(t, 15.0, medium.AvgTime, 0.001)
	assert.InDelta(t, 2.0/3.0*100, tracker.Accuracy(), 0.001)
}

func TestEngine_Analyze(t *testing.T) {
	e := NewEngine()

	// Strength: high accuracy including a hard question.
	e.StartLesson("Strong Lesson")
	e.Record(true, 10)
	e.Record(true, 10) // -> hard
	e.Record(true, 20)

	// Needs focus: terminated by two consecutive wrong answers.
	e.StartLesson("Weak Lesson")
	e.Record(false, 50)
	e.Record(false, 55)

	perfs := e.Analyze("session-1")
	require.Len(t, perfs, 2)

	byName := map[string]models.LessonPerformance{}
	for _, p := range perfs {
		byName[p.LessonName] = p
	}

	strong := byName["Strong Lesson"]
	assert.True(t, strong.IsStrength)
	assert.False(t, strong.NeedsFocus)
	assert.False(t, strong.Terminated)
	assert.Equal(t, "session-1", strong.SessionID)
	assert.InDelta(t, 100.0, strong.OverallAccuracy, 0.001)

	weak := byName["Weak Lesson"]
	assert.True(t, weak.NeedsFocus)
	assert.True(t, weak.Terminated)
	assert.True(t, weak.TimeConcerns)
	assert.InDelta(t, 0.0, weak.OverallAccuracy, 0.001)
}

func TestEngine_Confidence(t *testing.T) {
	e := NewEngine()
	e.SetConfidence("Lesson A", false)
	e.SetConfidence("Lesson B", true)

	assert.Equal(t, []string{"Lesson A"}, e.UnconfidentLessons())
}
