package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ErrNoCredentials is returned when no service account file is configured
var ErrNoCredentials = errors.New("firebase credentials path not provided")

// Settings select the service account and, optionally, the project it belongs to
type Settings struct {
	CredentialsPath string
	ProjectID       string
}

// Clients bundles the Firebase services used for sign-in and push delivery
type Clients struct {
	Auth      *auth.Client
	Messaging *messaging.Client
}

func (s Settings) appConfig() *firebase.Config {
	if s.ProjectID == "" {
		// Let the SDK read the project from the credentials file
		return nil
	}
	return &firebase.Config{ProjectID: s.ProjectID}
}

// Connect builds the Firebase app and returns its auth and messaging clients
func Connect(ctx context.Context, s Settings) (*Clients, error) {
	if s.CredentialsPath == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(s.CredentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file %s: %w", s.CredentialsPath, err)
	}

	app, err := firebase.NewApp(ctx, s.appConfig(), option.WithCredentialsFile(s.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging client: %w", err)
	}

	log.Info().Str("project_id", s.ProjectID).Msg("Firebase auth and messaging clients ready")
	return &Clients{Auth: authClient, Messaging: messagingClient}, nil
}
