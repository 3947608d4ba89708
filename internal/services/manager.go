package services

import (
	"log/slog"

	"github.com/error-404/learning-service/internal/cache"
	"github.com/error-404/learning-service/internal/events"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/sessions"
	"github.com/error-404/learning-service/internal/utils"
)

// ServiceManager bundles all services behind one dependency for the handler
// layer.
type ServiceManager interface {
	Session() SessionService
	Report() ReportService
	Review() ReviewService
	Clan() ClanService
	Content() ContentService
	Analytics() AnalyticsService
	ImportExport() ImportExportService
}

type serviceManager struct {
	session      SessionService
	report       ReportService
	review       ReviewService
	clan         ClanService
	content      ContentService
	analytics    AnalyticsService
	importExport ImportExportService
}

func NewServiceManager(
	repo repositories.Repository,
	store *sessions.Store,
	cacheService cache.CacheService,
	leaderboard cache.LeaderboardStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ServiceManager {
	clan := NewClanService(repo, leaderboard, publisher, logger, validator)

	return &serviceManager{
		session:      NewSessionService(repo, store, clan, publisher, logger, validator),
		report:       NewReportService(repo, logger),
		review:       NewReviewService(repo, publisher, logger, validator),
		clan:         clan,
		content:      NewContentService(repo, logger, validator),
		analytics:    NewAnalyticsService(repo, cacheService, logger),
		importExport: NewImportExportService(repo, logger, validator),
	}
}

func (m *serviceManager) Session() SessionService           { return m.session }
func (m *serviceManager) Report() ReportService             { return m.report }
func (m *serviceManager) Review() ReviewService             { return m.review }
func (m *serviceManager) Clan() ClanService                 { return m.clan }
func (m *serviceManager) Content() ContentService           { return m.content }
func (m *serviceManager) Analytics() AnalyticsService       { return m.analytics }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
