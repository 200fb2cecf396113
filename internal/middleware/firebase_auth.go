package middleware

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"
	"github.com/causeconnect/backend/internal/models"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserByFirebaseUID finds the local account linked to a Firebase UID
type UserByFirebaseUID interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseResolver maps a Firebase ID token onto the linked local user. Accounts
// are linked by POST /auth/firebase-login; unlinked tokens are rejected.
type FirebaseResolver struct {
	verifier TokenVerifier
	users    UserByFirebaseUID
}

func NewFirebaseResolver(verifier TokenVerifier, users UserByFirebaseUID) *FirebaseResolver {
	return &FirebaseResolver{verifier: verifier, users: users}
}

func (r *FirebaseResolver) Resolve(ctx context.Context, idToken string) (*models.JwtCustomClaims, error) {
	token, err := r.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := r.users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return &models.JwtCustomClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: models.TokenTypeAccess,
	}, nil
}
