package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient wraps Firebase Auth for the pieces the gateway touches: token
// verification and the role custom claim that the middleware and the
// websocket hub read from every token.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{client: client}
}

// VerifyToken validates an ID token and returns its UID.
func (a *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}
	return result.UID, nil
}

// SetRoleClaim writes the role custom claim. The client must refresh its ID
// token before the new role is visible to the middleware.
func (a *AuthClient) SetRoleClaim(ctx context.Context, uid, role string) error {
	return a.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": role})
}

// UpdateDisplayName keeps the auth record in sync with the profile name that
// chat participants see.
func (a *AuthClient) UpdateDisplayName(ctx context.Context, uid, name string) error {
	params := (&auth.UserToUpdate{}).DisplayName(name)
	_, err := a.client.UpdateUser(ctx, uid, params)
	return err
}
