package models

import "time"

// Role classifies a user as a capital provider or a capital seeker.
// It is assigned exactly once and never changes afterwards.
type Role string

const (
	RoleInvestor     Role = "INVESTOR"
	RoleEntrepreneur Role = "ENTREPRENEUR"
)

// User is a platform member. ExternalID is the opaque reference issued by the
// identity provider; all authorization inside the system uses the internal ID.
type User struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;size:128;not null" json:"-"`
	Name       string    `gorm:"size:100" json:"name"`
	Email      string    `gorm:"size:254" json:"email"`
	ImageURL   string    `gorm:"size:512" json:"image_url"`
	Role       *Role     `gorm:"type:varchar(20);check:role IN ('INVESTOR','ENTREPRENEUR')" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	InvestorProfile     *InvestorProfile     `gorm:"foreignKey:UserID" json:"investor_profile,omitempty"`
	EntrepreneurProfile *EntrepreneurProfile `gorm:"foreignKey:UserID" json:"entrepreneur_profile,omitempty"`
}

// RoleState returns the assigned role and whether one has been assigned.
// An unassigned role is the only state from which assignment is legal.
func (u *User) RoleState() (Role, bool) {
	if u.Role == nil {
		return "", false
	}
	return *u.Role, true
}

// InvestorProfile holds the investor-specific part of a user's profile.
type InvestorProfile struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	UserID       int64  `gorm:"uniqueIndex;not null" json:"user_id"`
	FirmName     string `gorm:"size:200" json:"firm_name"`
	FundingFocus string `gorm:"size:200" json:"funding_focus"`
	CheckSizeMin int64  `json:"check_size_min"`
	CheckSizeMax int64  `json:"check_size_max"`
}

// EntrepreneurProfile holds the entrepreneur-specific part of a user's profile.
type EntrepreneurProfile struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	UserID       int64  `gorm:"uniqueIndex;not null" json:"user_id"`
	StartupName  string `gorm:"size:200" json:"startup_name"`
	Pitch        string `gorm:"size:2000" json:"pitch"`
	FundingStage string `gorm:"size:100" json:"funding_stage"`
}

// ProfileDefaults are the identity-provider claims used to fill a user record
// the first time an authenticated caller touches the system.
type ProfileDefaults struct {
	Name     string
	Email    string
	ImageURL string
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"image_url"`
	Role      *Role     `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	InvestorProfile     *InvestorProfile     `json:"investor_profile,omitempty"`
	EntrepreneurProfile *EntrepreneurProfile `json:"entrepreneur_profile,omitempty"`
}

// AssignRoleInput is the body of the role assignment request.
type AssignRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// RoleResponse is the body of role queries and assignments.
type RoleResponse struct {
	Role *Role `json:"role"`
}

// InvestorProfileInput is the body for upserting an investor profile.
type InvestorProfileInput struct {
	FirmName     string `json:"firm_name"`
	FundingFocus string `json:"funding_focus"`
	CheckSizeMin int64  `json:"check_size_min"`
	CheckSizeMax int64  `json:"check_size_max"`
}

// EntrepreneurProfileInput is the body for upserting an entrepreneur profile.
type EntrepreneurProfileInput struct {
	StartupName  string `json:"startup_name"`
	Pitch        string `json:"pitch"`
	FundingStage string `json:"funding_stage"`
}

// ToResponse maps a stored user to its public view.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		ImageURL:            u.ImageURL,
		Role:                u.Role,
		CreatedAt:           u.CreatedAt,
		InvestorProfile:     u.InvestorProfile,
		EntrepreneurProfile: u.EntrepreneurProfile,
	}
}
