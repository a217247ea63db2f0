package grpc

import (
	"context"
	"errors"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	userpb "messaging-service/pb/user"
)

// UserClient wraps the user-service gRPC client (the relationship gate and
// public identity lookup).
type UserClient struct {
	client userpb.UserInternalClient
}

// NewUserClient constructs the wrapper.
func NewUserClient(client userpb.UserInternalClient) *UserClient {
	return &UserClient{client: client}
}

// AreFriends verifies a mutually-confirmed friendship between two users.
func (u *UserClient) AreFriends(ctx context.Context, userID, otherID int) (bool, error) {
	resp, err := u.client.AreFriends(ctx, &userpb.AreFriendsRequest{UserId: int64(userID), FriendId: int64(otherID)})
	observability.IncGateRequest("relationship", err)
	if err != nil {
		return false, err
	}
	return resp.GetAreFriends(), nil
}

// GetUser retrieves one user's public identity.
func (u *UserClient) GetUser(ctx context.Context, userID int) (models.UserProfile, error) {
	resp, err := u.client.GetUser(ctx, &userpb.GetUserRequest{UserId: int64(userID)})
	observability.IncGateRequest("relationship", err)
	if err != nil {
		return models.UserProfile{}, err
	}
	if resp.GetId() == 0 {
		return models.UserProfile{}, errors.New("user not found")
	}
	return profileFromResponse(resp), nil
}

// BulkUsers fetches multiple public identities in one call.
func (u *UserClient) BulkUsers(ctx context.Context, ids []int) ([]models.UserProfile, error) {
	if len(ids) == 0 {
		return []models.UserProfile{}, nil
	}
	id64s := make([]int64, 0, len(ids))
	for _, id := range ids {
		id64s = append(id64s, int64(id))
	}

	resp, err := u.client.BulkUsers(ctx, &userpb.BulkUsersRequest{Ids: id64s})
	observability.IncGateRequest("relationship", err)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.UserProfile, 0, len(resp.GetUsers()))
	for _, user := range resp.GetUsers() {
		profiles = append(profiles, profileFromResponse(user))
	}
	return profiles, nil
}

func profileFromResponse(resp *userpb.GetUserResponse) models.UserProfile {
	return models.UserProfile{
		ID:          int(resp.GetId()),
		Username:    resp.GetUsername(),
		DisplayName: resp.GetDisplayName(),
		AvatarURL:   resp.GetAvatarUrl(),
	}
}
