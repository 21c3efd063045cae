package config

import "context"

// SecretProvider abstracts secret retrieval so the proxy can read its
// provider credential from AWS SSM Parameter Store when deployed and from
// plain environment variables during local development.
type SecretProvider interface {
	// GetParametersBatch resolves the given parameter paths (or equivalent
	// identifiers) and returns path -> plaintext value for every parameter
	// that was found.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
