package usecase

import (
	"instamakaan/internal/data/repository"
	"instamakaan/pkg/mailer"
	"instamakaan/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth AuthService
}

func NewService(
	repo *repository.Repository,
	tokens SessionIssuer,
	mail mailer.Mailer,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth: NewAuthService(repo, tokens, mail, NewAuditor(repo.Audit, log), config, log),
	}
}
