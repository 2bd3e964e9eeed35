package service

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// SecretResolver turns a Secret Manager resource name into its payload.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, name string) (string, error)
}

// SecretManagerService resolves secrets from Google Secret Manager.
type SecretManagerService struct {
	client *secretmanager.Client
}

func NewSecretManagerService(ctx context.Context, opts ...option.ClientOption) (*SecretManagerService, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &SecretManagerService{client: client}, nil
}

// ResolveSecret accesses a secret version. A name without a version segment
// resolves the latest version.
func (s *SecretManagerService) ResolveSecret(ctx context.Context, name string) (string, error) {
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return strings.TrimSpace(string(result.Payload.Data)), nil
}

func (s *SecretManagerService) Close() error {
	return s.client.Close()
}
