// internal/app/system/auth/firebase.go
package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"google.golang.org/api/option"
)

// FirebaseProvider implements Provider against the Firebase Admin SDK.
type FirebaseProvider struct {
	client *fbauth.Client
}

// NewFirebaseProvider initializes the Admin SDK from a base64-encoded service
// account key (the form the deployment environment carries it in).
func NewFirebaseProvider(ctx context.Context, serviceKeyB64 string) (*FirebaseProvider, error) {
	if serviceKeyB64 == "" {
		return nil, fmt.Errorf("firebase service key is required")
	}
	raw, err := base64.StdEncoding.DecodeString(serviceKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode firebase service key: %w", err)
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}
	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) Verify(ctx context.Context, token string) (Identity, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Unauthorized, "token verification failed", err)
	}
	id := Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

func (p *FirebaseProvider) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		return apperr.Wrap(apperr.Upstream, "identity provider account deletion failed", err)
	}
	return nil
}
