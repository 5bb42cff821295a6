package repository

import (
	"context"

	"venture-match-backend/internal/features/user/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	AssignRole(ctx context.Context, id int64, role models.Role) error
	List(ctx context.Context) ([]*models.User, error)
	UpsertInvestorProfile(ctx context.Context, profile *models.InvestorProfile) error
	UpsertEntrepreneurProfile(ctx context.Context, profile *models.EntrepreneurProfile) error
}
