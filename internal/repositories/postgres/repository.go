package postgres

import (
	"github.com/error-404/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	user     repositories.UserRepository
	content  repositories.ContentRepository
	question repositories.QuestionRepository
	session  repositories.SessionRepository
	review   repositories.ReviewRepository
	clan     repositories.ClanRepository
}

// NewRepository wires all PostgreSQL repositories behind the aggregate
// interface.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		user:     NewUserPostgreSQL(db),
		content:  NewContentPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		session:  NewSessionPostgreSQL(db),
		review:   NewReviewPostgreSQL(db),
		clan:     NewClanPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository         { return r.user }
func (r *repository) Content() repositories.ContentRepository   { return r.content }
func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Session() repositories.SessionRepository   { return r.session }
func (r *repository) Review() repositories.ReviewRepository     { return r.review }
func (r *repository) Clan() repositories.ClanRepository         { return r.clan }
