package repository

import (
	"context"

	"venture-match-backend/internal/features/connection/models"
	usermodels "venture-match-backend/internal/features/user/models"
)

type ConnectionRepository interface {
	Create(ctx context.Context, request *models.ConnectionRequest) error
	GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error)
	GetByPair(ctx context.Context, senderID, receiverID int64) (*models.ConnectionRequest, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error
	Delete(ctx context.Context, id int64) error
	ListBySender(ctx context.Context, senderID int64, filter models.ListFilter) ([]*models.ConnectionRequest, error)
	ListByReceiver(ctx context.Context, receiverID int64, filter models.ListFilter) ([]*models.ConnectionRequest, error)
	ListCandidates(ctx context.Context, userID int64) ([]*usermodels.User, error)
}
