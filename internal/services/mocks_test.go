package services

import (
	"context"
	"time"

	"github.com/error-404/learning-service/internal/cache"
	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// ===== MOCK REPOSITORIES =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastActive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockContentRepository) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockContentRepository) GetCourseWithModules(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockContentRepository) ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Course), args.Get(1).(int64), args.Error(2)
}

func (m *MockContentRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockContentRepository) DeleteCourse(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContentRepository) CreateModule(ctx context.Context, module *models.CourseModule) error {
	args := m.Called(ctx, module)
	return args.Error(0)
}

func (m *MockContentRepository) GetModule(ctx context.Context, id uint) (*models.CourseModule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseModule), args.Error(1)
}

func (m *MockContentRepository) GetModuleWithLessons(ctx context.Context, id uint) (*models.CourseModule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseModule), args.Error(1)
}

func (m *MockContentRepository) ListModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CourseModule), args.Error(1)
}

func (m *MockContentRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockContentRepository) GetLesson(ctx context.Context, id uint) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockContentRepository) GetLessonByName(ctx context.Context, moduleID uint, name string) (*models.Lesson, error) {
	args := m.Called(ctx, moduleID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockContentRepository) ListLessons(ctx context.Context, moduleID uint) ([]*models.Lesson, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lesson), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) GetByLessonAndDifficulty(ctx context.Context, lessonID uint, difficulty models.DifficultyLevel, excludeIDs []uint) ([]*models.Question, error) {
	args := m.Called(ctx, lessonID, difficulty, excludeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByModule(ctx context.Context, moduleID uint) ([]*models.Question, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByLesson(ctx context.Context, lessonID uint) (map[models.DifficultyLevel]int, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.DifficultyLevel]int), args.Error(1)
}

func (m *MockQuestionRepository) GetStats(ctx context.Context, questionID uint) (*models.QuestionStats, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionStats), args.Error(1)
}

func (m *MockQuestionRepository) RecordUsage(ctx context.Context, questionID uint, correct bool, responseTime float64) error {
	args := m.Called(ctx, questionID, correct, responseTime)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.TestSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.TestSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestSession), args.Error(1)
}

func (m *MockSessionRepository) GetByIDWithDetails(ctx context.Context, id string) (*models.TestSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestSession), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, session *models.TestSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.TestSession, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.TestSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) Finalize(ctx context.Context, session *models.TestSession, responses []models.UserResponse, performances []models.LessonPerformance) error {
	args := m.Called(ctx, session, responses, performances)
	return args.Error(0)
}

func (m *MockSessionRepository) GetGlobalStats(ctx context.Context) (*repositories.GlobalStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.GlobalStats), args.Error(1)
}

func (m *MockSessionRepository) GetUserLessonStats(ctx context.Context, userID string) ([]repositories.LessonStat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.LessonStat), args.Error(1)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, card *models.ReviewCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uint) (*models.ReviewCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewCard), args.Error(1)
}

func (m *MockReviewRepository) GetByUserAndLesson(ctx context.Context, userID string, lessonID uint) (*models.ReviewCard, error) {
	args := m.Called(ctx, userID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewCard), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, card *models.ReviewCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) Upsert(ctx context.Context, card *models.ReviewCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockReviewRepository) GetDue(ctx context.Context, userID string, asOf time.Time, limit int) ([]*models.ReviewCard, error) {
	args := m.Called(ctx, userID, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReviewCard), args.Error(1)
}

func (m *MockReviewRepository) ListByUser(ctx context.Context, userID string) ([]*models.ReviewCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReviewCard), args.Error(1)
}

func (m *MockReviewRepository) GetRetentionStats(ctx context.Context, userID string, asOf time.Time) (*repositories.RetentionStats, error) {
	args := m.Called(ctx, userID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.RetentionStats), args.Error(1)
}

type MockClanRepository struct {
	mock.Mock
}

func (m *MockClanRepository) Create(ctx context.Context, clan *models.Clan) error {
	args := m.Called(ctx, clan)
	return args.Error(0)
}

func (m *MockClanRepository) GetByID(ctx context.Context, id uint) (*models.Clan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clan), args.Error(1)
}

func (m *MockClanRepository) GetByIDWithMembers(ctx context.Context, id uint) (*models.Clan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clan), args.Error(1)
}

func (m *MockClanRepository) Update(ctx context.Context, clan *models.Clan) error {
	args := m.Called(ctx, clan)
	return args.Error(0)
}

func (m *MockClanRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClanRepository) List(ctx context.Context, filters repositories.ClanFilters) ([]*models.Clan, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Clan), args.Get(1).(int64), args.Error(2)
}

func (m *MockClanRepository) AddMember(ctx context.Context, member *models.ClanMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockClanRepository) RemoveMember(ctx context.Context, clanID uint, userID string) error {
	args := m.Called(ctx, clanID, userID)
	return args.Error(0)
}

func (m *MockClanRepository) GetMember(ctx context.Context, clanID uint, userID string) (*models.ClanMember, error) {
	args := m.Called(ctx, clanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClanMember), args.Error(1)
}

func (m *MockClanRepository) GetMembership(ctx context.Context, userID string) (*models.ClanMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClanMember), args.Error(1)
}

func (m *MockClanRepository) CountMembers(ctx context.Context, clanID uint) (int64, error) {
	args := m.Called(ctx, clanID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClanRepository) AddScore(ctx context.Context, clanID uint, userID string, delta int64) (int64, error) {
	args := m.Called(ctx, clanID, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClanRepository) TopClans(ctx context.Context, limit int) ([]*models.Clan, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Clan), args.Error(1)
}

func (m *MockClanRepository) TopMembers(ctx context.Context, clanID uint, limit int) ([]*models.ClanMember, error) {
	args := m.Called(ctx, clanID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClanMember), args.Error(1)
}

// ===== MOCK SERVICES =====

type MockClanService struct {
	mock.Mock
}

func (m *MockClanService) Create(ctx context.Context, req *CreateClanRequest) (*models.Clan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clan), args.Error(1)
}

func (m *MockClanService) Get(ctx context.Context, clanID uint) (*models.Clan, error) {
	args := m.Called(ctx, clanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clan), args.Error(1)
}

func (m *MockClanService) List(ctx context.Context, filters repositories.ClanFilters) ([]*models.Clan, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Clan), args.Get(1).(int64), args.Error(2)
}

func (m *MockClanService) Disband(ctx context.Context, clanID uint, userID string) error {
	args := m.Called(ctx, clanID, userID)
	return args.Error(0)
}

func (m *MockClanService) Join(ctx context.Context, clanID uint, userID string) (*models.ClanMember, error) {
	args := m.Called(ctx, clanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClanMember), args.Error(1)
}

func (m *MockClanService) Leave(ctx context.Context, clanID uint, userID string) error {
	args := m.Called(ctx, clanID, userID)
	return args.Error(0)
}

func (m *MockClanService) AccrueScore(ctx context.Context, userID string, delta int64) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

func (m *MockClanService) ClanLeaderboard(ctx context.Context, clanID uint, limit int) (*models.Leaderboard, error) {
	args := m.Called(ctx, clanID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Leaderboard), args.Error(1)
}

func (m *MockClanService) GlobalLeaderboard(ctx context.Context, limit int) (*models.Leaderboard, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Leaderboard), args.Error(1)
}

// ===== AGGREGATE MOCK =====

type mockRepository struct {
	user     *MockUserRepository
	content  *MockContentRepository
	question *MockQuestionRepository
	session  *MockSessionRepository
	review   *MockReviewRepository
	clan     *MockClanRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		user:     new(MockUserRepository),
		content:  new(MockContentRepository),
		question: new(MockQuestionRepository),
		session:  new(MockSessionRepository),
		review:   new(MockReviewRepository),
		clan:     new(MockClanRepository),
	}
}

func (m *mockRepository) User() repositories.UserRepository         { return m.user }
func (m *mockRepository) Content() repositories.ContentRepository   { return m.content }
func (m *mockRepository) Question() repositories.QuestionRepository { return m.question }
func (m *mockRepository) Session() repositories.SessionRepository   { return m.session }
func (m *mockRepository) Review() repositories.ReviewRepository     { return m.review }
func (m *mockRepository) Clan() repositories.ClanRepository         { return m.clan }

// ===== MOCK LEADERBOARD =====

type MockLeaderboardStore struct {
	mock.Mock
}

func (m *MockLeaderboardStore) IncrScore(ctx context.Context, board, memberID string, delta int64) (int64, error) {
	args := m.Called(ctx, board, memberID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboardStore) Top(ctx context.Context, board string, limit int) ([]cache.RankedMember, error) {
	args := m.Called(ctx, board, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cache.RankedMember), args.Error(1)
}

func (m *MockLeaderboardStore) Rank(ctx context.Context, board, memberID string) (int64, error) {
	args := m.Called(ctx, board, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboardStore) Remove(ctx context.Context, board, memberID string) error {
	args := m.Called(ctx, board, memberID)
	return args.Error(0)
}

func (m *MockLeaderboardStore) Drop(ctx context.Context, board string) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}
