package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "venture-match-backend/internal/common/errors"
	"venture-match-backend/internal/common/logger"
	"venture-match-backend/internal/common/validation"
	"venture-match-backend/internal/features/connection/models"
	"venture-match-backend/internal/features/connection/repository"
	usermodels "venture-match-backend/internal/features/user/models"
	userrepo "venture-match-backend/internal/features/user/repository"
)

type connectionService struct {
	repo     repository.ConnectionRepository
	userRepo userrepo.UserRepository
}

func NewConnectionService(repo repository.ConnectionRepository, userRepo userrepo.UserRepository) ConnectionService {
	return &connectionService{
		repo:     repo,
		userRepo: userRepo,
	}
}

// resolveCaller maps the identity provider's opaque reference to the stored
// user record.
func (s *connectionService) resolveCaller(ctx context.Context, externalID string) (*usermodels.User, error) {
	caller, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUserNotFoundError(externalID)
		}
		return nil, apperrors.NewStoreError("resolve caller", err)
	}
	return caller, nil
}

func (s *connectionService) SendRequest(ctx context.Context, callerExternalID string, receiverID int64) (*models.ConnectionResponse, error) {
	if err := validation.ValidatePositiveID(receiverID, "receiver_id"); err != nil {
		return nil, apperrors.NewValidationError("receiver_id", err.Error())
	}

	caller, err := s.resolveCaller(ctx, callerExternalID)
	if err != nil {
		return nil, err
	}

	if caller.ID == receiverID {
		return nil, apperrors.NewSelfRequestError()
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUserNotFoundError(receiverID)
		}
		return nil, apperrors.NewStoreError("get receiver", err)
	}

	// Advisory pre-check; the unique index on (sender, receiver) is what
	// actually guarantees at-most-one request per ordered pair.
	if _, err := s.repo.GetByPair(ctx, caller.ID, receiverID); err == nil {
		return nil, apperrors.NewRequestAlreadyExistsError(receiverID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewStoreError("check existing request", err)
	}

	request := &models.ConnectionRequest{
		SenderID:   caller.ID,
		ReceiverID: receiverID,
		Status:     models.StatusPending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent duplicate send lost the race at the index.
			return nil, apperrors.NewRequestAlreadyExistsError(receiverID)
		}
		return nil, apperrors.NewStoreError("create request", err)
	}

	logger.Info().
		Int64("request_id", request.ID).
		Int64("sender_id", caller.ID).
		Int64("receiver_id", receiverID).
		Msg("Connection request sent")

	return request.ToResponse(receiver), nil
}

func (s *connectionService) RespondToRequest(ctx context.Context, callerExternalID string, requestID int64, status string) (*models.ConnectionResponse, error) {
	if err := validation.ValidateRequestStatus(status); err != nil {
		return nil, apperrors.NewValidationError("status", err.Error())
	}
	decision := models.RequestStatus(status)

	caller, err := s.resolveCaller(ctx, callerExternalID)
	if err != nil {
		return nil, err
	}

	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewRequestNotFoundError(requestID)
		}
		return nil, apperrors.NewStoreError("get request", err)
	}

	// Internal ids on both sides; only the receiver decides.
	if request.ReceiverID != caller.ID {
		return nil, apperrors.NewNotAuthorizedError("only the receiver may respond to a request")
	}

	if request.Status == decision {
		// Idempotent re-apply of the same decision.
		return request.ToResponse(nil), nil
	}

	if !request.CanTransitionTo(decision) {
		return nil, apperrors.NewInvalidTransitionError(string(request.Status), string(decision))
	}

	if err := s.repo.UpdateStatus(ctx, requestID, decision); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewRequestNotFoundError(requestID)
		}
		return nil, apperrors.NewStoreError("update request status", err)
	}

	request.Status = decision

	logger.Info().
		Int64("request_id", requestID).
		Str("status", status).
		Msg("Connection request answered")

	return request.ToResponse(nil), nil
}

func (s *connectionService) DeleteRequest(ctx context.Context, callerExternalID string, requestID int64) error {
	caller, err := s.resolveCaller(ctx, callerExternalID)
	if err != nil {
		return err
	}

	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewRequestNotFoundError(requestID)
		}
		return apperrors.NewStoreError("get request", err)
	}

	if request.SenderID != caller.ID && request.ReceiverID != caller.ID {
		return apperrors.NewNotAuthorizedError("only the sender or receiver may delete a request")
	}

	if err := s.repo.Delete(ctx, requestID); err != nil {
		return apperrors.NewStoreError("delete request", err)
	}

	logger.Info().
		Int64("request_id", requestID).
		Int64("user_id", caller.ID).
		Msg("Connection request deleted")

	return nil
}

func (s *connectionService) ListSent(ctx context.Context, callerExternalID string, filter models.ListFilter) ([]*models.ConnectionResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	caller, err := s.resolveCaller(ctx, callerExternalID)
	if err != nil {
		return nil, err
	}

	requests, err := s.repo.ListBySender(ctx, caller.ID, filter)
	if err != nil {
		return nil, apperrors.NewStoreError("list sent requests", err)
	}

	responses := make([]*models.ConnectionResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, request.ToResponse(request.Receiver))
	}
	return responses, nil
}

func (s *connectionService) ListReceived(ctx context.Context, callerExternalID string, filter models.ListFilter) ([]*models.ConnectionResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	caller, err := s.resolveCaller(ctx, callerExternalID)
	if err != nil {
		return nil, err
	}

	requests, err := s.repo.ListByReceiver(ctx, caller.ID, filter)
	if err != nil {
		return nil, apperrors.NewStoreError("list received requests", err)
	}

	responses := make([]*models.ConnectionResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, request.ToResponse(request.Sender))
	}
	return responses, nil
}

func (s *connectionService) ListCandidates(ctx context.Context, callerExternalID string) ([]*usermodels.UserResponse, error) {
	caller, err := s.resolveCaller(ctx, callerExternalID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListCandidates(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.NewStoreError("list candidates", err)
	}

	responses := make([]*usermodels.UserResponse, 0, len(candidates))
	for _, candidate := range candidates {
		responses = append(responses, candidate.ToResponse())
	}
	return responses, nil
}

func validateFilter(filter models.ListFilter) error {
	if err := validation.ValidateSearchTerm(filter.SearchTerm); err != nil {
		return apperrors.NewValidationError("search", err.Error())
	}
	if filter.Role != "" {
		if err := validation.ValidateRole(filter.Role); err != nil {
			return apperrors.NewValidationError("role", err.Error())
		}
	}
	return nil
}
