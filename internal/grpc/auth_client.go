package grpc

import (
	"context"
	"errors"

	"messaging-service/internal/observability"
	authpb "messaging-service/pb/auth"
)

// ErrInvalidToken is returned when the identity gate rejects a token.
var ErrInvalidToken = errors.New("invalid token")

// AuthClient wraps the auth-service gRPC client (the identity gate).
type AuthClient struct {
	client authpb.AuthServiceClient
}

// NewAuthClient constructs the wrapper.
func NewAuthClient(client authpb.AuthServiceClient) *AuthClient {
	return &AuthClient{client: client}
}

// ValidateToken verifies the token and returns the authenticated user id.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (int, error) {
	resp, err := a.client.ValidateToken(ctx, &authpb.ValidateTokenRequest{Token: token})
	observability.IncGateRequest("identity", err)
	if err != nil {
		return 0, err
	}
	if !resp.GetValid() || resp.GetUserId() == 0 {
		return 0, ErrInvalidToken
	}
	return int(resp.GetUserId()), nil
}
