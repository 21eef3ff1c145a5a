package usecase

import (
	"context"
	"time"

	"instamakaan/internal/data/entity"
	"instamakaan/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const auditTimeout = 5 * time.Second

// Auditor records sensitive actions. Record never blocks the caller and
// never reports failure.
type Auditor interface {
	Record(account *entity.Account, action entity.AuditAction, meta map[string]any)
}

type auditor struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

func NewAuditor(repo repository.AuditRepository, log *zap.Logger) Auditor {
	return &auditor{repo: repo, log: log.With(zap.String("component", "audit"))}
}

func (a *auditor) Record(account *entity.Account, action entity.AuditAction, meta map[string]any) {
	entry := &entity.AuditLog{
		AccountID: account.ID.String(),
		Role:      account.Role,
		Action:    action,
		Resource:  "account",
		Meta:      meta,
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	go a.write(entry)
}

func (a *auditor) write(entry *entity.AuditLog) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("Audit write panicked", zap.Any("panic", r), zap.String("action", string(entry.Action)))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	if err := a.repo.Create(ctx, entry); err != nil {
		a.log.Warn("Audit write dropped", zap.Error(err), zap.String("action", string(entry.Action)))
	}
}
