package models

import (
	"time"

	usermodels "venture-match-backend/internal/features/user/models"
)

// RequestStatus is the receiver's decision on a connection request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusAccepted RequestStatus = "ACCEPTED"
	StatusRejected RequestStatus = "REJECTED"
)

// IsTerminal reports whether the status is a receiver decision.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ConnectionRequest is a directed intent to link two users. The ordered pair
// (sender, receiver) is unique; the database index is the source of truth for
// duplicate suppression.
type ConnectionRequest struct {
	ID         int64         `gorm:"primaryKey" json:"id"`
	SenderID   int64         `gorm:"not null;uniqueIndex:idx_connection_pair" json:"sender_id"`
	ReceiverID int64         `gorm:"not null;uniqueIndex:idx_connection_pair" json:"receiver_id"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING','ACCEPTED','REJECTED')" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	Sender   *usermodels.User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver *usermodels.User `gorm:"foreignKey:ReceiverID" json:"-"`
}

// CanTransitionTo reports whether moving to the given status is legal.
// Only PENDING -> {ACCEPTED, REJECTED} is allowed.
func (r *ConnectionRequest) CanTransitionTo(to RequestStatus) bool {
	return r.Status == StatusPending && to.IsTerminal()
}

// SendRequestInput is the body for creating a connection request.
type SendRequestInput struct {
	ReceiverID int64 `json:"receiver_id" binding:"required"`
}

// RespondInput is the body for the receiver's decision.
type RespondInput struct {
	Status string `json:"status" binding:"required"`
}

// ListFilter narrows sent/received listings by the counterpart's profile.
type ListFilter struct {
	SearchTerm string
	Role       string
}

// ConnectionResponse is a request enriched with the counterpart's public
// profile: the receiver for sent listings, the sender for received ones.
type ConnectionResponse struct {
	ID         int64                    `json:"id"`
	SenderID   int64                    `json:"sender_id"`
	ReceiverID int64                    `json:"receiver_id"`
	Status     RequestStatus            `json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
	User       *usermodels.UserResponse `json:"user,omitempty"`
}

// ToResponse maps a request to its API view with the given counterpart.
func (r *ConnectionRequest) ToResponse(counterpart *usermodels.User) *ConnectionResponse {
	response := &ConnectionResponse{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
	if counterpart != nil {
		response.User = counterpart.ToResponse()
	}
	return response
}
