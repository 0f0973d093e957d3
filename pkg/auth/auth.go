// Package auth initializes the identity-provider (Firebase) client once per process.
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"user-profile-api/pkg/config"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var firebaseScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// TokenVerifier checks an identity-provider ID token and returns the uid it was issued for.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// Provider holds the process-wide Firebase auth client.
type Provider struct {
	ProjectID string
	client    *fbauth.Client
}

type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ServiceAccountJSON renders the configured credentials as a service-account key file.
// Escaped "\n" sequences in the private key are turned into real newlines.
func ServiceAccountJSON(projectID, clientEmail, privateKey string) ([]byte, error) {
	if projectID == "" || clientEmail == "" || privateKey == "" {
		return nil, fmt.Errorf("firebase project id, client email and private key are all required")
	}
	return json.Marshal(serviceAccount{
		Type:        "service_account",
		ProjectID:   projectID,
		ClientEmail: clientEmail,
		PrivateKey:  config.NormalizePrivateKey(privateKey),
		TokenURI:    google.JWTTokenURL,
	})
}

// NewProvider builds the Firebase app from config. Without a client email and private key the
// app is created unauthenticated, which is still enough to verify ID tokens.
func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	fb := cfg.Firebase
	if fb.ProjectID == "" {
		return nil, fmt.Errorf("firebase project id is not configured")
	}

	var opt option.ClientOption
	if fb.ClientEmail != "" || fb.PrivateKey != "" {
		raw, err := ServiceAccountJSON(fb.ProjectID, fb.ClientEmail, fb.PrivateKey)
		if err != nil {
			return nil, err
		}
		creds, err := google.CredentialsFromJSON(ctx, raw, firebaseScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse firebase credentials: %w", err)
		}
		opt = option.WithCredentials(creds)
	} else {
		opt = option.WithoutAuthentication()
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fb.ProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	return &Provider{ProjectID: fb.ProjectID, client: client}, nil
}

// VerifyIDToken implements TokenVerifier.
func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("token string cannot be empty")
	}
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}
	return token.UID, nil
}
