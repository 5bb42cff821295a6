package service

import (
	"context"

	"venture-match-backend/internal/features/connection/models"
	usermodels "venture-match-backend/internal/features/user/models"
)

// ConnectionService is the connection ledger. Every operation resolves the
// caller's external identity to the internal user id before doing anything
// else; authorization never compares across the two id namespaces.
type ConnectionService interface {
	SendRequest(ctx context.Context, callerExternalID string, receiverID int64) (*models.ConnectionResponse, error)
	RespondToRequest(ctx context.Context, callerExternalID string, requestID int64, status string) (*models.ConnectionResponse, error)
	DeleteRequest(ctx context.Context, callerExternalID string, requestID int64) error
	ListSent(ctx context.Context, callerExternalID string, filter models.ListFilter) ([]*models.ConnectionResponse, error)
	ListReceived(ctx context.Context, callerExternalID string, filter models.ListFilter) ([]*models.ConnectionResponse, error)
	ListCandidates(ctx context.Context, callerExternalID string) ([]*usermodels.UserResponse, error)
}
