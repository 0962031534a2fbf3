package auth

import (
	"context"
	"errors"
	"os"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrSignInUnavailable is returned when no identity provider is configured.
var ErrSignInUnavailable = errors.New("sign-in is not configured")

// Identity is a verified sign-in.
type Identity struct {
	UID   string
	Email string
}

// IDTokenVerifier checks an identity provider token.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (Identity, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a verifier for projectID. An empty projectID
// falls back to the service account file named by
// GOOGLE_APPLICATION_CREDENTIALS; without either sign-in is unavailable.
func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	var app *firebase.App
	var err error
	if projectID != "" {
		app, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	} else {
		path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if path == "" {
			return nil, ErrSignInUnavailable
		}
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	}
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	id := Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}
