package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "venture-match-backend/internal/common/errors"
	"venture-match-backend/internal/features/connection/models"
	usermodels "venture-match-backend/internal/features/user/models"
)

type fakeUserRepo struct {
	users  map[int64]*usermodels.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*usermodels.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *usermodels.User) error {
	for _, existing := range f.users {
		if existing.ExternalID == user.ExternalID {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*usermodels.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByExternalID(_ context.Context, externalID string) (*usermodels.User, error) {
	for _, user := range f.users {
		if user.ExternalID == externalID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) AssignRole(_ context.Context, id int64, role usermodels.Role) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Role = &role
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*usermodels.User, error) {
	var users []*usermodels.User
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) UpsertInvestorProfile(_ context.Context, _ *usermodels.InvestorProfile) error {
	return nil
}

func (f *fakeUserRepo) UpsertEntrepreneurProfile(_ context.Context, _ *usermodels.EntrepreneurProfile) error {
	return nil
}

type fakeConnectionRepo struct {
	users    *fakeUserRepo
	requests map[int64]*models.ConnectionRequest
	nextID   int64
}

func newFakeConnectionRepo(users *fakeUserRepo) *fakeConnectionRepo {
	return &fakeConnectionRepo{
		users:    users,
		requests: make(map[int64]*models.ConnectionRequest),
		nextID:   1,
	}
}

func (f *fakeConnectionRepo) Create(_ context.Context, request *models.ConnectionRequest) error {
	for _, existing := range f.requests {
		if existing.SenderID == request.SenderID && existing.ReceiverID == request.ReceiverID {
			return gorm.ErrDuplicatedKey
		}
	}
	request.ID = f.nextID
	f.nextID++
	f.requests[request.ID] = request
	return nil
}

func (f *fakeConnectionRepo) GetByID(_ context.Context, id int64) (*models.ConnectionRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeConnectionRepo) GetByPair(_ context.Context, senderID, receiverID int64) (*models.ConnectionRequest, error) {
	for _, request := range f.requests {
		if request.SenderID == senderID && request.ReceiverID == receiverID {
			copied := *request
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConnectionRepo) UpdateStatus(_ context.Context, id int64, status models.RequestStatus) error {
	request, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	request.Status = status
	return nil
}

func (f *fakeConnectionRepo) Delete(_ context.Context, id int64) error {
	delete(f.requests, id)
	return nil
}

func (f *fakeConnectionRepo) ListBySender(_ context.Context, senderID int64, filter models.ListFilter) ([]*models.ConnectionRequest, error) {
	var requests []*models.ConnectionRequest
	for _, request := range f.requests {
		if request.SenderID != senderID {
			continue
		}
		counterpart := f.users.users[request.ReceiverID]
		if !matchesFilter(counterpart, filter) {
			continue
		}
		copied := *request
		copied.Receiver = counterpart
		requests = append(requests, &copied)
	}
	return requests, nil
}

func (f *fakeConnectionRepo) ListByReceiver(_ context.Context, receiverID int64, filter models.ListFilter) ([]*models.ConnectionRequest, error) {
	var requests []*models.ConnectionRequest
	for _, request := range f.requests {
		if request.ReceiverID != receiverID {
			continue
		}
		counterpart := f.users.users[request.SenderID]
		if !matchesFilter(counterpart, filter) {
			continue
		}
		copied := *request
		copied.Sender = counterpart
		requests = append(requests, &copied)
	}
	return requests, nil
}

func (f *fakeConnectionRepo) ListCandidates(_ context.Context, userID int64) ([]*usermodels.User, error) {
	connected := map[int64]bool{userID: true}
	for _, request := range f.requests {
		if request.SenderID == userID {
			connected[request.ReceiverID] = true
		}
		if request.ReceiverID == userID {
			connected[request.SenderID] = true
		}
	}

	var users []*usermodels.User
	for _, user := range f.users.users {
		if !connected[user.ID] {
			users = append(users, user)
		}
	}
	return users, nil
}

// racyConnectionRepo hides existing pairs from the advisory pre-check.
type racyConnectionRepo struct {
	*fakeConnectionRepo
}

func (r *racyConnectionRepo) GetByPair(_ context.Context, _, _ int64) (*models.ConnectionRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func matchesFilter(user *usermodels.User, filter models.ListFilter) bool {
	if user == nil {
		return false
	}
	if filter.SearchTerm != "" &&
		!strings.Contains(user.Name, filter.SearchTerm) &&
		!strings.Contains(user.Email, filter.SearchTerm) {
		return false
	}
	if filter.Role != "" {
		role, ok := user.RoleState()
		if !ok || string(role) != filter.Role {
			return false
		}
	}
	return true
}

func setup(t *testing.T) (ConnectionService, *fakeUserRepo, *fakeConnectionRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	connectionRepo := newFakeConnectionRepo(userRepo)
	return NewConnectionService(connectionRepo, userRepo), userRepo, connectionRepo
}

func addUser(t *testing.T, repo *fakeUserRepo, externalID, name, email string, role usermodels.Role) *usermodels.User {
	t.Helper()
	user := &usermodels.User{
		ExternalID: externalID,
		Name:       name,
		Email:      email,
	}
	if role != "" {
		user.Role = &role
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending request once", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		request, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, request.Status)
		assert.Equal(t, sender.ID, request.SenderID)
		assert.Equal(t, receiver.ID, request.ReceiverID)
		require.NotNil(t, request.User)
		assert.Equal(t, receiver.ID, request.User.ID)

		_, err = svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		assertCode(t, err, apperrors.ErrCodeRequestAlreadyExists)
	})

	t.Run("self request rejected", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)

		_, err := svc.SendRequest(ctx, sender.ExternalID, sender.ID)
		assertCode(t, err, apperrors.ErrCodeSelfRequestNotAllowed)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)

		_, err := svc.SendRequest(ctx, sender.ExternalID, 999)
		assertCode(t, err, apperrors.ErrCodeUserNotFound)
	})

	t.Run("unknown caller", func(t *testing.T) {
		svc, users, _ := setup(t)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		_, err := svc.SendRequest(ctx, "ext-missing", receiver.ID)
		assertCode(t, err, apperrors.ErrCodeUserNotFound)
	})

	t.Run("duplicate key race maps to already exists", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		connections := newFakeConnectionRepo(userRepo)
		// A repo that never sees the existing pair in the pre-check, so the
		// insert itself hits the unique index, as in a concurrent send.
		svc := NewConnectionService(&racyConnectionRepo{connections}, userRepo)

		sender := addUser(t, userRepo, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, userRepo, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)
		require.NoError(t, connections.Create(ctx, &models.ConnectionRequest{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Status:     models.StatusPending,
		}))

		_, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		assertCode(t, err, apperrors.ErrCodeRequestAlreadyExists)
	})

	t.Run("invalid receiver id", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)

		_, err := svc.SendRequest(ctx, sender.ExternalID, 0)
		assertCode(t, err, apperrors.ErrCodeValidation)
	})
}

func TestRespondToRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("only the receiver decides", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		request, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)

		_, err = svc.RespondToRequest(ctx, sender.ExternalID, request.ID, "ACCEPTED")
		assertCode(t, err, apperrors.ErrCodeNotAuthorized)

		updated, err := svc.RespondToRequest(ctx, receiver.ExternalID, request.ID, "ACCEPTED")
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, updated.Status)

		received, err := svc.ListReceived(ctx, receiver.ExternalID, models.ListFilter{})
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, models.StatusAccepted, received[0].Status)
	})

	t.Run("invalid status value", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		request, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)

		_, err = svc.RespondToRequest(ctx, receiver.ExternalID, request.ID, "PENDING")
		assertCode(t, err, apperrors.ErrCodeValidation)
	})

	t.Run("missing request", func(t *testing.T) {
		svc, users, _ := setup(t)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		_, err := svc.RespondToRequest(ctx, receiver.ExternalID, 42, "ACCEPTED")
		assertCode(t, err, apperrors.ErrCodeRequestNotFound)
	})

	t.Run("terminal transitions", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		request, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)

		_, err = svc.RespondToRequest(ctx, receiver.ExternalID, request.ID, "REJECTED")
		require.NoError(t, err)

		// Re-applying the same decision is idempotent.
		again, err := svc.RespondToRequest(ctx, receiver.ExternalID, request.ID, "REJECTED")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, again.Status)

		// Flipping between terminal decisions is not.
		_, err = svc.RespondToRequest(ctx, receiver.ExternalID, request.ID, "ACCEPTED")
		assertCode(t, err, apperrors.ErrCodeInvalidTransition)
	})
}

func TestDeleteRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("third party cannot delete", func(t *testing.T) {
		svc, users, connections := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)
		outsider := addUser(t, users, "ext-x", "Mallory", "mallory@example.com", usermodels.RoleInvestor)

		request, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)

		err = svc.DeleteRequest(ctx, outsider.ExternalID, request.ID)
		assertCode(t, err, apperrors.ErrCodeNotAuthorized)

		_, err = connections.GetByID(ctx, request.ID)
		require.NoError(t, err, "record must survive an unauthorized delete")
	})

	t.Run("either party can delete", func(t *testing.T) {
		svc, users, connections := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		request, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)
		require.NoError(t, svc.DeleteRequest(ctx, sender.ExternalID, request.ID))

		_, err = connections.GetByID(ctx, request.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		// Once deleted the pair is free again.
		_, err = svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)
	})
}

func TestListings(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip sent and received", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		receiver := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)

		request, err := svc.SendRequest(ctx, sender.ExternalID, receiver.ID)
		require.NoError(t, err)

		sent, err := svc.ListSent(ctx, sender.ExternalID, models.ListFilter{})
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, request.ID, sent[0].ID)
		assert.Equal(t, sender.ID, sent[0].SenderID)
		assert.Equal(t, receiver.ID, sent[0].ReceiverID)
		assert.Equal(t, models.StatusPending, sent[0].Status)
		require.NotNil(t, sent[0].User)
		assert.Equal(t, "Bob", sent[0].User.Name)

		received, err := svc.ListReceived(ctx, receiver.ExternalID, models.ListFilter{})
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, request.ID, received[0].ID)
		assert.Equal(t, models.StatusPending, received[0].Status)
		require.NotNil(t, received[0].User)
		assert.Equal(t, "Alice", received[0].User.Name)
	})

	t.Run("filters by counterpart", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
		bob := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)
		carol := addUser(t, users, "ext-c", "Carol", "carol@example.com", usermodels.RoleEntrepreneur)

		_, err := svc.SendRequest(ctx, sender.ExternalID, bob.ID)
		require.NoError(t, err)
		_, err = svc.SendRequest(ctx, sender.ExternalID, carol.ID)
		require.NoError(t, err)

		investorsOnly, err := svc.ListSent(ctx, sender.ExternalID, models.ListFilter{Role: "INVESTOR"})
		require.NoError(t, err)
		require.Len(t, investorsOnly, 1)
		assert.Equal(t, bob.ID, investorsOnly[0].ReceiverID)

		byName, err := svc.ListSent(ctx, sender.ExternalID, models.ListFilter{SearchTerm: "carol@"})
		require.NoError(t, err)
		require.Len(t, byName, 1)
		assert.Equal(t, carol.ID, byName[0].ReceiverID)
	})

	t.Run("invalid role filter", func(t *testing.T) {
		svc, users, _ := setup(t)
		sender := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)

		_, err := svc.ListSent(ctx, sender.ExternalID, models.ListFilter{Role: "BANKER"})
		assertCode(t, err, apperrors.ErrCodeValidation)
	})
}

func TestListCandidates(t *testing.T) {
	ctx := context.Background()

	svc, users, _ := setup(t)
	caller := addUser(t, users, "ext-a", "Alice", "alice@example.com", usermodels.RoleEntrepreneur)
	sentTo := addUser(t, users, "ext-b", "Bob", "bob@example.com", usermodels.RoleInvestor)
	receivedFrom := addUser(t, users, "ext-c", "Carol", "carol@example.com", usermodels.RoleInvestor)
	unconnected := addUser(t, users, "ext-d", "Dave", "dave@example.com", usermodels.RoleInvestor)

	_, err := svc.SendRequest(ctx, caller.ExternalID, sentTo.ID)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, receivedFrom.ExternalID, caller.ID)
	require.NoError(t, err)

	candidates, err := svc.ListCandidates(ctx, caller.ExternalID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, unconnected.ID, candidates[0].ID)

	for _, candidate := range candidates {
		assert.NotEqual(t, caller.ID, candidate.ID)
		assert.NotEqual(t, sentTo.ID, candidate.ID)
		assert.NotEqual(t, receivedFrom.ID, candidate.ID)
	}
}

// Full lifecycle: role choice, request, acceptance, duplicate suppression.
func TestEntrepreneurInvestorScenario(t *testing.T) {
	ctx := context.Background()

	svc, users, _ := setup(t)
	e1 := addUser(t, users, "ext-e1", "E1", "e1@example.com", "")
	i1 := addUser(t, users, "ext-i1", "I1", "i1@example.com", usermodels.RoleInvestor)

	role := usermodels.RoleEntrepreneur
	require.NoError(t, users.AssignRole(ctx, e1.ID, role))

	request, err := svc.SendRequest(ctx, e1.ExternalID, i1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, request.Status)

	accepted, err := svc.RespondToRequest(ctx, i1.ExternalID, request.ID, "ACCEPTED")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	_, err = svc.SendRequest(ctx, e1.ExternalID, i1.ID)
	assertCode(t, err, apperrors.ErrCodeRequestAlreadyExists)
}
