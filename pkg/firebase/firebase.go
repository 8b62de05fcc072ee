// Package firebase lets visitors sign in with a Firebase ID token.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/anonto42/yatube/pkg/config"
)

// ErrDisabled means no service account is configured
var ErrDisabled = errors.New("firebase login is not configured")

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// NewTokenVerifier builds the auth client from the service account at
// FIREBASE_CREDENTIALS_PATH. It returns ErrDisabled when the path is unset.
func NewTokenVerifier(ctx context.Context, cfg *config.Config) (TokenVerifier, error) {
	path := cfg.FirebaseCredentialsPath
	if path == "" {
		return nil, ErrDisabled
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("service account %s: %w", path, err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	log.Info().Str("credentials", path).Msg("Firebase login enabled.")
	return client, nil
}
