package auth

import (
	"context"
	"crypto/subtle"

	"keijiban/services"
)

// Credential is whatever the client presented: a user id (role mode) or
// the shared key (key mode). Either side may be empty.
type Credential struct {
	UserID string
	Key    string
}

// Authorizer gates the /kanri admin operations. Every failure flavor is
// services.ErrForbidden; callers never learn which check missed.
type Authorizer interface {
	Authorize(ctx context.Context, cred Credential) error
}

// RoleAuthorizer admits credentials whose user id resolves to an existing
// admin account. The lookup runs per request, so revoked admins are cut
// off immediately.
type RoleAuthorizer struct {
	Users *services.UserService
}

func (a *RoleAuthorizer) Authorize(ctx context.Context, cred Credential) error {
	ok, err := a.Users.IsAdmin(ctx, cred.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return services.ErrForbidden
	}
	return nil
}

// KeyAuthorizer admits credentials carrying the shared admin key.
type KeyAuthorizer struct {
	Key string
}

func (a *KeyAuthorizer) Authorize(ctx context.Context, cred Credential) error {
	if a.Key == "" || subtle.ConstantTimeCompare([]byte(cred.Key), []byte(a.Key)) != 1 {
		return services.ErrForbidden
	}
	return nil
}
