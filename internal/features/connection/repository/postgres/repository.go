package postgres

import (
	"context"

	"gorm.io/gorm"

	"venture-match-backend/internal/features/connection/models"
	"venture-match-backend/internal/features/connection/repository"
	usermodels "venture-match-backend/internal/features/user/models"
)

type postgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) repository.ConnectionRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, request *models.ConnectionRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	var request models.ConnectionRequest
	err := r.db.WithContext(ctx).First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *postgresRepository) GetByPair(ctx context.Context, senderID, receiverID int64) (*models.ConnectionRequest, error) {
	var request models.ConnectionRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.ConnectionRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.ConnectionRequest{}, id).Error
}

func (r *postgresRepository) ListBySender(ctx context.Context, senderID int64, filter models.ListFilter) ([]*models.ConnectionRequest, error) {
	var requests []*models.ConnectionRequest
	query := r.db.WithContext(ctx).
		Preload("Receiver").
		Preload("Receiver.InvestorProfile").
		Preload("Receiver.EntrepreneurProfile").
		Where("connection_requests.sender_id = ?", senderID)

	query = applyCounterpartFilter(query, "receiver_id", filter)

	err := query.Order("connection_requests.created_at DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *postgresRepository) ListByReceiver(ctx context.Context, receiverID int64, filter models.ListFilter) ([]*models.ConnectionRequest, error) {
	var requests []*models.ConnectionRequest
	query := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Sender.InvestorProfile").
		Preload("Sender.EntrepreneurProfile").
		Where("connection_requests.receiver_id = ?", receiverID)

	query = applyCounterpartFilter(query, "sender_id", filter)

	err := query.Order("connection_requests.created_at DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// applyCounterpartFilter narrows a listing by the other side's profile fields.
func applyCounterpartFilter(query *gorm.DB, counterpartColumn string, filter models.ListFilter) *gorm.DB {
	if filter.SearchTerm == "" && filter.Role == "" {
		return query
	}

	query = query.Joins("JOIN users ON users.id = connection_requests." + counterpartColumn)
	if filter.SearchTerm != "" {
		pattern := "%" + filter.SearchTerm + "%"
		query = query.Where("users.name ILIKE ? OR users.email ILIKE ?", pattern, pattern)
	}
	if filter.Role != "" {
		query = query.Where("users.role = ?", filter.Role)
	}
	return query
}

// ListCandidates returns every user except the given one and anyone already
// linked to them by a request in either direction, whatever its status.
func (r *postgresRepository) ListCandidates(ctx context.Context, userID int64) ([]*usermodels.User, error) {
	connected := r.db.
		Model(&models.ConnectionRequest{}).
		Select("CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END", userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)

	var users []*usermodels.User
	err := r.db.WithContext(ctx).
		Preload("InvestorProfile").
		Preload("EntrepreneurProfile").
		Where("id <> ?", userID).
		Where("id NOT IN (?)", connected).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
