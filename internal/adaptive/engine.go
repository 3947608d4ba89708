package adaptive

import (
	"sort"

	"github.com/error-404/learning-service/internal/models"
)

const (
	// QuestionsPerWindow is how many questions are served at a difficulty
	// level before the engine reconsiders it.
	QuestionsPerWindow = 2

	// TerminationStreak is the number of consecutive wrong answers within a
	// lesson that terminates it.
	TerminationStreak = 2

	// SlowResponseSeconds marks a lesson with time concerns when its mean
	// response time exceeds this.
	SlowResponseSeconds = 45.0
)

// LessonTracker accumulates per-difficulty counters for a single lesson.
type LessonTracker struct {
	Buckets map[models.DifficultyLevel]*models.DifficultyBucket

	// Consecutive wrong answers within this lesson; resets on a correct
	// answer.
	WrongStreak int
	Terminated  bool

	// Pre-assessment confidence; nil when the learner was not asked.
	Confident *bool
}

func newLessonTracker() *LessonTracker {
	return &LessonTracker{
		Buckets: map[models.DifficultyLevel]*models.DifficultyBucket{
			models.DifficultyEasy:   {},
			models.DifficultyMedium: {},
			models.DifficultyHard:   {},
		},
	}
}

// Accuracy returns the overall lesson accuracy as a percentage.
func (t *LessonTracker) Accuracy() float64 {
	var correct, total int
	for _, b := range t.Buckets {
		correct += b.Correct
		total += b.Total
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// AvgTime returns the mean of the per-bucket rolling averages over buckets
// that saw at least one question.
func (t *LessonTracker) AvgTime() float64 {
	var sum float64
	var n int
	for _, b := range t.Buckets {
		if b.Total > 0 {
			sum += b.AvgTime
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Result reports the outcome of recording one answer.
type Result struct {
	NextDifficulty   models.DifficultyLevel
	LessonTerminated bool
}

// Engine is the adaptive difficulty controller. A lesson starts at medium;
// every answer feeds a two-question window after which the difficulty is
// raised, lowered, or held. Two consecutive wrong answers within a lesson
// terminate it. The engine is not safe for concurrent use; callers serialize
// access per session.
type Engine struct {
	difficulty models.DifficultyLevel

	windowCount   int // questions answered at the current difficulty
	streakCorrect int
	streakWrong   int

	currentLesson string
	lessons       map[string]*LessonTracker
}

// NewEngine creates an engine positioned at medium difficulty.
func NewEngine() *Engine {
	return &Engine{
		difficulty: models.DifficultyMedium,
		lessons:    make(map[string]*LessonTracker),
	}
}

// Difficulty returns the level the next question should be drawn from.
func (e *Engine) Difficulty() models.DifficultyLevel {
	return e.difficulty
}

// CurrentLesson returns the lesson being tested, empty before StartLesson.
func (e *Engine) CurrentLesson() string {
	return e.currentLesson
}

// SetConfidence records the pre-assessment confidence for a lesson. Lessons
// marked not confident surface as skills-assessment weaknesses in reports.
func (e *Engine) SetConfidence(lesson string, confident bool) {
	t := e.lesson(lesson)
	t.Confident = &confident
}

// StartLesson resets difficulty to medium and clears the streak counters for
// a new lesson.
func (e *Engine) StartLesson(lesson string) {
	e.currentLesson = lesson
	e.difficulty = models.DifficultyMedium
	e.windowCount = 0
	e.streakCorrect = 0
	e.streakWrong = 0

	t := e.lesson(lesson)
	t.WrongStreak = 0
}

// Record feeds one answer into the controller and returns the difficulty for
// the next question plus whether the current lesson just terminated.
func (e *Engine) Record(correct bool, responseTime float64) Result {
	e.windowCount++

	if correct {
		e.streakCorrect++
		e.streakWrong = 0
	} else {
		e.streakWrong++
		e.streakCorrect = 0
	}

	var terminated bool
	if e.currentLesson != "" {
		t := e.lesson(e.currentLesson)

		if correct {
			t.WrongStreak = 0
		} else {
			t.WrongStreak++
		}

		bucket := t.Buckets[e.difficulty]
		bucket.Total++
		if correct {
			bucket.Correct++
		}
		bucket.AvgTime += (responseTime - bucket.AvgTime) / float64(bucket.Total)

		if !t.Terminated && t.WrongStreak >= TerminationStreak {
			t.Terminated = true
			terminated = true
		}
	}

	if e.windowCount >= QuestionsPerWindow {
		e.difficulty = e.nextDifficulty()
		e.windowCount = 0
		e.streakCorrect = 0
		e.streakWrong = 0
	}

	return Result{NextDifficulty: e.difficulty, LessonTerminated: terminated}
}

// nextDifficulty applies the window rule table. The result is always one of
// the three levels; the ladder has no states beyond easy and hard.
func (e *Engine) nextDifficulty() models.DifficultyLevel {
	switch e.difficulty {
	case models.DifficultyMedium:
		if e.streakCorrect >= QuestionsPerWindow {
			return models.DifficultyHard
		}
		return models.DifficultyEasy
	case models.DifficultyEasy:
		if e.streakCorrect >= QuestionsPerWindow {
			return models.DifficultyMedium
		}
		return models.DifficultyEasy
	case models.DifficultyHard:
		if e.streakCorrect >= 1 {
			return models.DifficultyHard
		}
		return models.DifficultyMedium
	}
	return models.DifficultyMedium
}

// Lesson returns the tracker for a lesson, nil if it was never visited.
func (e *Engine) Lesson(name string) *LessonTracker {
	return e.lessons[name]
}

// LessonNames returns the visited lessons in stable order.
func (e *Engine) LessonNames() []string {
	names := make([]string, 0, len(e.lessons))
	for name := range e.lessons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) lesson(name string) *LessonTracker {
	t, ok := e.lessons[name]
	if !ok {
		t = newLessonTracker()
		e.lessons[name] = t
	}
	return t
}

// Analyze produces the persisted per-lesson performance rows, categorizing
// each visited lesson. A lesson is a strength at >= 80% accuracy with at
// least one hard question correct; it needs focus below 60% accuracy or when
// any easy question was missed.
func (e *Engine) Analyze(sessionID string) []models.LessonPerformance {
	out := make([]models.LessonPerformance, 0, len(e.lessons))
	for _, name := range e.LessonNames() {
		t := e.lessons[name]

		easy := t.Buckets[models.DifficultyEasy]
		medium := t.Buckets[models.DifficultyMedium]
		hard := t.Buckets[models.DifficultyHard]

		perf := models.LessonPerformance{
			SessionID:       sessionID,
			LessonName:      name,
			EasyCorrect:     easy.Correct,
			EasyTotal:       easy.Total,
			MediumCorrect:   medium.Correct,
			MediumTotal:     medium.Total,
			HardCorrect:     hard.Correct,
			HardTotal:       hard.Total,
			AvgTime:         t.AvgTime(),
			OverallAccuracy: t.Accuracy(),
			Terminated:      t.Terminated,
			MarkedUnknown:   t.Confident != nil && !*t.Confident,
		}

		if perf.EasyTotal+perf.MediumTotal+perf.HardTotal > 0 {
			if perf.AvgTime > SlowResponseSeconds {
				perf.TimeConcerns = true
			}
			if perf.OverallAccuracy >= 80 && hard.Correct > 0 {
				perf.IsStrength = true
			} else if perf.OverallAccuracy < 60 || easy.Correct < easy.Total {
				perf.NeedsFocus = true
			}
		}

		out = append(out, perf)
	}
	return out
}

// UnconfidentLessons returns lessons the learner marked as unknown during the
// pre-assessment.
func (e *Engine) UnconfidentLessons() []string {
	var out []string
	for _, name := range e.LessonNames() {
		t := e.lessons[name]
		if t.Confident != nil && !*t.Confident {
			out = append(out, name)
		}
	}
	return out
}
