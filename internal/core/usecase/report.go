package usecase

import (
	"context"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
)

type ReportUsecase struct {
	users   ports.UserRepository
	maxRows int
}

func NewReportUsecase(users ports.UserRepository, maxRows int) *ReportUsecase {
	if maxRows <= 0 {
		maxRows = 1000
	}
	return &ReportUsecase{users: users, maxRows: maxRows}
}

func (u *ReportUsecase) UsageReport(ctx context.Context) ([]domain.UsageRow, error) {
	return u.users.UsageReport(ctx, u.maxRows)
}
