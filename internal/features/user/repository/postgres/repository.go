package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"venture-match-backend/internal/features/user/models"
	"venture-match-backend/internal/features/user/repository"
)

type postgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) repository.UserRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("InvestorProfile").
		Preload("EntrepreneurProfile").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("InvestorProfile").
		Preload("EntrepreneurProfile").
		Where("external_id = ?", externalID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AssignRole performs the Unassigned -> Assigned transition with a
// conditional UPDATE, so the row itself arbitrates when callers race. Zero
// rows affected means the user is missing or a role is already set; the
// service re-reads to tell the two apart.
func (r *postgresRepository) AssignRole(ctx context.Context, id int64, role models.Role) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role IS NULL", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Preload("InvestorProfile").
		Preload("EntrepreneurProfile").
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresRepository) UpsertInvestorProfile(ctx context.Context, profile *models.InvestorProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"firm_name", "funding_focus", "check_size_min", "check_size_max"}),
		}).
		Create(profile).Error
}

func (r *postgresRepository) UpsertEntrepreneurProfile(ctx context.Context, profile *models.EntrepreneurProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"startup_name", "pitch", "funding_stage"}),
		}).
		Create(profile).Error
}
