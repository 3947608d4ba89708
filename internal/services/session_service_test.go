package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/error-404/learning-service/internal/events"
	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/sessions"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sessionFixture struct {
	repo      *mockRepository
	store     *sessions.Store
	clans     *MockClanService
	publisher *events.MockEventPublisher
	svc       SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMockRepository()
	store := sessions.NewStore(time.Hour)
	t.Cleanup(store.Close)

	clans := new(MockClanService)
	publisher := events.NewMockEventPublisher(logger)

	return &sessionFixture{
		repo:      repo,
		store:     store,
		clans:     clans,
		publisher: publisher,
		svc:       NewSessionService(repo, store, clans, publisher, logger, utils.NewValidator()),
	}
}

// start wires a module with the given lessons and begins a session for
// user-1.
func (f *sessionFixture) start(t *testing.T, lessons ...models.Lesson) *StartSessionResponse {
	module := &models.CourseModule{ID: 1, CourseID: 1, Title: "Algebra", Lessons: lessons}
	f.repo.content.On("GetModuleWithLessons", mock.Anything, uint(1)).Return(module, nil)
	f.repo.session.On("Create", mock.Anything, mock.AnythingOfType("*models.TestSession")).Return(nil)

	resp, err := f.svc.Start(context.Background(), &StartSessionRequest{UserID: "user-1", ModuleID: 1})
	require.NoError(t, err)
	return resp
}

func (f *sessionFixture) startLesson(t *testing.T, sessionID string, lesson models.Lesson) {
	f.repo.content.On("GetLesson", mock.Anything, lesson.ID).Return(&lesson, nil)
	require.NoError(t, f.svc.StartLesson(context.Background(), sessionID, &StartLessonRequest{LessonID: lesson.ID}))
}

func mcq(id, lessonID uint, difficulty models.DifficultyLevel, correct string) *models.Question {
	return &models.Question{
		ID:         id,
		LessonID:   lessonID,
		Text:       "What is the value of x in 2x + 4 = 10?",
		Options:    datatypes.JSON(`{"A":"3","B":"4","C":"5","D":"6"}`),
		Correct:    correct,
		Difficulty: difficulty,
	}
}

func eventTypes(p *events.MockEventPublisher) []events.EventType {
	published := p.GetPublishedEvents()
	types := make([]events.EventType, 0, len(published))
	for _, e := range published {
		types = append(types, e.Type)
	}
	return types
}

func TestSessionService_Start(t *testing.T) {
	f := newSessionFixture(t)

	resp := f.start(t,
		models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"},
		models.Lesson{ID: 11, ModuleID: 1, Name: "Quadratic Equations"},
	)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Algebra", resp.ModuleTitle)
	assert.ElementsMatch(t, []string{"Linear Equations", "Quadratic Equations"}, resp.Lessons)

	sess := f.store.Get(resp.SessionID)
	require.NotNil(t, sess)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, uint(10), sess.LessonIDs["Linear Equations"])

	assert.Contains(t, eventTypes(f.publisher), events.EventSessionStarted)
	f.repo.session.AssertExpectations(t)
}

func TestSessionService_Start_ModuleNotFound(t *testing.T) {
	f := newSessionFixture(t)
	f.repo.content.On("GetModuleWithLessons", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.Start(context.Background(), &StartSessionRequest{UserID: "user-1", ModuleID: 99})
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestSessionService_Start_EmptyModule(t *testing.T) {
	f := newSessionFixture(t)
	module := &models.CourseModule{ID: 1, Title: "Empty"}
	f.repo.content.On("GetModuleWithLessons", mock.Anything, uint(1)).Return(module, nil)

	_, err := f.svc.Start(context.Background(), &StartSessionRequest{UserID: "user-1", ModuleID: 1})
	assert.True(t, IsBusinessRule(err))
}

func TestSessionService_Start_Validation(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.svc.Start(context.Background(), &StartSessionRequest{UserID: "", ModuleID: 1})
	assert.True(t, IsValidation(err))
}

func TestSessionService_SetConfidence(t *testing.T) {
	f := newSessionFixture(t)
	resp := f.start(t, models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"})

	err := f.svc.SetConfidence(context.Background(), resp.SessionID, &ConfidenceRequest{
		Lessons: map[string]bool{"Linear Equations": false},
	})
	require.NoError(t, err)

	err = f.svc.SetConfidence(context.Background(), resp.SessionID, &ConfidenceRequest{
		Lessons: map[string]bool{"Not A Lesson": true},
	})
	assert.True(t, IsBusinessRule(err))
}

func TestSessionService_SetConfidence_RejectedBatchLeavesNoMarks(t *testing.T) {
	f := newSessionFixture(t)
	resp := f.start(t, models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"})

	// One valid and one unknown lesson in the same batch: the whole batch
	// is rejected and the valid lesson stays unmarked.
	err := f.svc.SetConfidence(context.Background(), resp.SessionID, &ConfidenceRequest{
		Lessons: map[string]bool{"Linear Equations": false, "Not A Lesson": false},
	})
	assert.True(t, IsBusinessRule(err))

	sess := f.store.Get(resp.SessionID)
	require.NotNil(t, sess)
	sess.Lock()
	performances := sess.Engine.Analyze(resp.SessionID)
	sess.Unlock()
	for _, perf := range performances {
		assert.False(t, perf.MarkedUnknown, "lesson %s should not be marked", perf.LessonName)
	}
}

func TestSessionService_SetConfidence_SessionNotFound(t *testing.T) {
	f := newSessionFixture(t)

	err := f.svc.SetConfidence(context.Background(), "missing", &ConfidenceRequest{
		Lessons: map[string]bool{"x": true},
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_StartLesson_ModuleMismatch(t *testing.T) {
	f := newSessionFixture(t)
	resp := f.start(t, models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"})

	other := models.Lesson{ID: 50, ModuleID: 2, Name: "Trigonometry"}
	f.repo.content.On("GetLesson", mock.Anything, uint(50)).Return(&other, nil)

	err := f.svc.StartLesson(context.Background(), resp.SessionID, &StartLessonRequest{LessonID: 50})
	assert.True(t, IsBusinessRule(err))
}

func TestSessionService_NextQuestion_ServesAndReserves(t *testing.T) {
	f := newSessionFixture(t)
	lesson := models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"}
	resp := f.start(t, lesson)
	f.startLesson(t, resp.SessionID, lesson)

	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyMedium, mock.Anything).
		Return([]*models.Question{mcq(100, 10, models.DifficultyMedium, "A")}, nil).Once()

	q1, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, uint(100), q1.QuestionID)
	assert.Equal(t, models.DifficultyMedium, q1.Difficulty)
	assert.Equal(t, "Linear Equations", q1.LessonName)
	assert.Equal(t, "3", q1.Options["A"])

	// A repeated request serves the same pending question without a new
	// draw.
	q2, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, q1.QuestionID, q2.QuestionID)
	f.repo.question.AssertExpectations(t)
}

func TestSessionService_NextQuestion_FallsBackToAdjacentLevel(t *testing.T) {
	f := newSessionFixture(t)
	lesson := models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"}
	resp := f.start(t, lesson)
	f.startLesson(t, resp.SessionID, lesson)

	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyMedium, mock.Anything).
		Return([]*models.Question{}, nil)
	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyEasy, mock.Anything).
		Return([]*models.Question{mcq(200, 10, models.DifficultyEasy, "B")}, nil)

	q, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, uint(200), q.QuestionID)
	assert.Equal(t, models.DifficultyEasy, q.Difficulty)
}

func TestSessionService_NextQuestion_Exhausted(t *testing.T) {
	f := newSessionFixture(t)
	lesson := models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"}
	resp := f.start(t, lesson)
	f.startLesson(t, resp.SessionID, lesson)

	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), mock.Anything, mock.Anything).
		Return([]*models.Question{}, nil)

	_, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
}

func TestSessionService_NextQuestion_RequiresLesson(t *testing.T) {
	f := newSessionFixture(t)
	resp := f.start(t, models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"})

	_, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	assert.True(t, IsBusinessRule(err))
}

func TestSessionService_SubmitResponse_NoPending(t *testing.T) {
	f := newSessionFixture(t)
	lesson := models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"}
	resp := f.start(t, lesson)
	f.startLesson(t, resp.SessionID, lesson)

	_, err := f.svc.SubmitResponse(context.Background(), resp.SessionID, &SubmitResponseRequest{Answer: "A", ResponseTime: 5})
	assert.ErrorIs(t, err, ErrNoPendingQuestion)
}

func TestSessionService_SubmitResponse_GradesAnswer(t *testing.T) {
	f := newSessionFixture(t)
	lesson := models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"}
	resp := f.start(t, lesson)
	f.startLesson(t, resp.SessionID, lesson)

	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyMedium, mock.Anything).
		Return([]*models.Question{mcq(100, 10, models.DifficultyMedium, "A")}, nil).Once()
	f.repo.question.On("RecordUsage", mock.Anything, uint(100), true, 12.0).Return(nil)

	_, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)

	result, err := f.svc.SubmitResponse(context.Background(), resp.SessionID, &SubmitResponseRequest{Answer: "A", ResponseTime: 12})
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, "A", result.CorrectAnswer)
	assert.False(t, result.LessonTerminated)
	f.repo.question.AssertExpectations(t)

	status, err := f.svc.Status(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.QuestionsAsked)
	assert.Equal(t, 1, status.CorrectAnswers)
	assert.False(t, status.PendingQuestion)
}

func TestSessionService_SubmitResponse_TerminatesAfterConsecutiveWrong(t *testing.T) {
	f := newSessionFixture(t)
	lesson := models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"}
	resp := f.start(t, lesson)
	f.startLesson(t, resp.SessionID, lesson)

	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyMedium, mock.Anything).
		Return([]*models.Question{mcq(100, 10, models.DifficultyMedium, "A")}, nil).Once()
	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyMedium, mock.Anything).
		Return([]*models.Question{mcq(101, 10, models.DifficultyMedium, "A")}, nil).Once()
	f.repo.question.On("RecordUsage", mock.Anything, mock.Anything, false, mock.Anything).Return(nil)

	_, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)
	first, err := f.svc.SubmitResponse(context.Background(), resp.SessionID, &SubmitResponseRequest{Answer: "B", ResponseTime: 5})
	require.NoError(t, err)
	assert.False(t, first.LessonTerminated)

	_, err = f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)
	second, err := f.svc.SubmitResponse(context.Background(), resp.SessionID, &SubmitResponseRequest{Answer: "B", ResponseTime: 5})
	require.NoError(t, err)
	assert.True(t, second.LessonTerminated)

	assert.Contains(t, eventTypes(f.publisher), events.EventLessonTerminated)
}

func TestSessionService_Complete(t *testing.T) {
	f := newSessionFixture(t)
	lesson := models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"}
	resp := f.start(t, lesson)
	f.startLesson(t, resp.SessionID, lesson)

	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyMedium, mock.Anything).
		Return([]*models.Question{mcq(100, 10, models.DifficultyMedium, "A")}, nil).Once()
	f.repo.question.On("GetByLessonAndDifficulty", mock.Anything, uint(10), models.DifficultyMedium, mock.Anything).
		Return([]*models.Question{mcq(101, 10, models.DifficultyMedium, "A")}, nil).Once()
	f.repo.question.On("RecordUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// One right, one wrong: 50% accuracy flags the lesson for focus.
	_, err := f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)
	_, err = f.svc.SubmitResponse(context.Background(), resp.SessionID, &SubmitResponseRequest{Answer: "A", ResponseTime: 10})
	require.NoError(t, err)
	_, err = f.svc.NextQuestion(context.Background(), resp.SessionID)
	require.NoError(t, err)
	_, err = f.svc.SubmitResponse(context.Background(), resp.SessionID, &SubmitResponseRequest{Answer: "B", ResponseTime: 10})
	require.NoError(t, err)

	record := &models.TestSession{ID: resp.SessionID, UserID: "user-1", ModuleID: 1, Status: models.SessionStatusInProgress}
	f.repo.session.On("GetByID", mock.Anything, resp.SessionID).Return(record, nil)
	f.repo.session.On("Finalize", mock.Anything, record, mock.Anything, mock.Anything).Return(nil)
	f.repo.review.On("Upsert", mock.Anything, mock.AnythingOfType("*models.ReviewCard")).Return(nil)
	f.clans.On("AccrueScore", mock.Anything, "user-1", int64(10)).Return(nil)

	summary, err := f.svc.Complete(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.QuestionsAsked)
	assert.Equal(t, 1, summary.CorrectAnswers)
	assert.InDelta(t, 50.0, summary.Accuracy, 0.001)
	assert.Equal(t, 1, summary.ReviewsQueued)
	assert.Equal(t, int64(10), summary.ScoreAwarded)
	require.Len(t, summary.Performances, 1)
	assert.True(t, summary.Performances[0].NeedsFocus)

	assert.Contains(t, eventTypes(f.publisher), events.EventSessionCompleted)
	assert.Nil(t, f.store.Get(resp.SessionID))
	f.repo.session.AssertExpectations(t)
	f.repo.review.AssertExpectations(t)
	f.clans.AssertExpectations(t)
}

func TestSessionService_Complete_AlreadyCompleted(t *testing.T) {
	f := newSessionFixture(t)
	resp := f.start(t, models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"})

	record := &models.TestSession{ID: resp.SessionID, Status: models.SessionStatusCompleted}
	f.repo.session.On("GetByID", mock.Anything, resp.SessionID).Return(record, nil)

	_, err := f.svc.Complete(context.Background(), resp.SessionID)
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)
}

func TestSessionService_Complete_LostFinalizeRace(t *testing.T) {
	f := newSessionFixture(t)
	resp := f.start(t, models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"})

	// The status read passes but a concurrent Complete finalizes first; the
	// guarded update reports it and the caller sees already-completed.
	record := &models.TestSession{ID: resp.SessionID, UserID: "user-1", Status: models.SessionStatusInProgress}
	f.repo.session.On("GetByID", mock.Anything, resp.SessionID).Return(record, nil)
	f.repo.session.On("Finalize", mock.Anything, record, mock.Anything, mock.Anything).
		Return(repositories.ErrSessionNotInProgress)

	_, err := f.svc.Complete(context.Background(), resp.SessionID)
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)
}

func TestSessionService_Abandon(t *testing.T) {
	f := newSessionFixture(t)
	resp := f.start(t, models.Lesson{ID: 10, ModuleID: 1, Name: "Linear Equations"})

	record := &models.TestSession{ID: resp.SessionID, UserID: "user-1", Status: models.SessionStatusInProgress}
	f.repo.session.On("GetByID", mock.Anything, resp.SessionID).Return(record, nil)
	f.repo.session.On("Update", mock.Anything, record).Return(nil)

	require.NoError(t, f.svc.Abandon(context.Background(), resp.SessionID))
	assert.Equal(t, models.SessionStatusAbandoned, record.Status)
	assert.NotNil(t, record.CompletedAt)
	assert.Nil(t, f.store.Get(resp.SessionID))
}

func TestSessionService_Abandon_SessionNotFound(t *testing.T) {
	f := newSessionFixture(t)

	err := f.svc.Abandon(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
