package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/utils"
)

var (
	ErrUserNotFound    = fmt.Errorf("%w: user not found", repositories.ErrNotFound)
	ErrRequestNotFound = fmt.Errorf("%w: friend request not found", repositories.ErrNotFound)
	ErrSelfFriend      = errors.New("you can't add yourself as a friend")
	ErrAlreadyFriends  = fmt.Errorf("%w: already friends", repositories.ErrConflict)
	ErrRequestPending  = fmt.Errorf("%w: friend request already pending", repositories.ErrConflict)
)

type FriendService struct {
	profiles    repositories.ProfileRepository
	friendships repositories.FriendshipRepository
	statuses    repositories.StatusRepository
}

func NewFriendService(
	profiles repositories.ProfileRepository,
	friendships repositories.FriendshipRepository,
	statuses repositories.StatusRepository,
) *FriendService {
	return &FriendService{profiles: profiles, friendships: friendships, statuses: statuses}
}

// SendRequest asks the user with the given username to be friends.
func (s *FriendService) SendRequest(ctx context.Context, userID uuid.UUID, username string) (*models.Friendship, error) {
	username = utils.NormalizeUsername(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	target, err := s.profiles.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if target.ID == userID {
		return nil, ErrSelfFriend
	}

	existing, err := s.friendships.FindBetween(ctx, userID, target.ID)
	switch {
	case err == nil:
		if existing.Status == models.FriendshipAccepted {
			return nil, ErrAlreadyFriends
		}
		return nil, ErrRequestPending
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}

	request := &models.Friendship{UserID: userID, FriendID: target.ID, Status: models.FriendshipPending}
	err = s.friendships.Create(ctx, request)
	if errors.Is(err, repositories.ErrConflict) {
		// Lost a race with an identical request.
		return nil, ErrRequestPending
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Accept turns a pending request addressed to userID into a friendship.
func (s *FriendService) Accept(ctx context.Context, userID, requestID uuid.UUID) error {
	err := s.friendships.Accept(ctx, requestID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRequestNotFound
	}
	return err
}

// Reject deletes the request. Either side may withdraw it.
func (s *FriendService) Reject(ctx context.Context, userID, requestID uuid.UUID) error {
	err := s.friendships.Delete(ctx, requestID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRequestNotFound
	}
	return err
}

// ListFriends returns accepted friends in both directions with their last
// known status.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithStatus, error) {
	profiles, err := s.friendships.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []models.FriendWithStatus{}, nil
	}

	ids := make([]uuid.UUID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	statuses, err := s.statuses.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]*models.UserStatus, len(statuses))
	for _, st := range statuses {
		byUser[st.UserID] = st
	}

	friends := make([]models.FriendWithStatus, len(profiles))
	for i, p := range profiles {
		friends[i] = models.FriendWithStatus{Profile: *p, Status: byUser[p.ID]}
	}
	return friends, nil
}

func (s *FriendService) PendingRequests(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	requests, err := s.friendships.ListPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []*models.FriendRequest{}
	}
	return requests, nil
}
