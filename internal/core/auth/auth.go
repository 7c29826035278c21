// Package auth provides HMAC-based API key authentication for gRPC services.
package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// workspaceKey is the context key for storing the authenticated workspace.
const workspaceKey = contextKey("workspace")

// MetadataKey is the gRPC metadata entry carrying the API key.
const MetadataKey = "x-api-key"

// KeyRecord is what a key store knows about one accepted key.
type KeyRecord struct {
	Workspace string
	Revoked   bool
}

// KeyStore resolves a key's HMAC to its record.
// Returns ErrInvalidKey when no key has that HMAC.
type KeyStore interface {
	Lookup(ctx context.Context, hash []byte) (KeyRecord, error)
}

// StaticKeyStore is a KeyStore over a fixed list, typically auth.keys from
// the service config.
type StaticKeyStore struct {
	entries []staticEntry
}

type staticEntry struct {
	hash   []byte
	record KeyRecord
}

// StaticKey is one entry for NewStaticKeyStore. Hash is hex.
type StaticKey struct {
	Workspace string
	Hash      string
	Revoked   bool
}

// NewStaticKeyStore decodes the key list.
func NewStaticKeyStore(keys []StaticKey) (*StaticKeyStore, error) {
	s := &StaticKeyStore{entries: make([]staticEntry, 0, len(keys))}
	for i, k := range keys {
		hash, err := hex.DecodeString(k.Hash)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		s.entries = append(s.entries, staticEntry{
			hash:   hash,
			record: KeyRecord{Workspace: k.Workspace, Revoked: k.Revoked},
		})
	}
	return s, nil
}

// Lookup implements KeyStore. Every entry is compared in constant time.
func (s *StaticKeyStore) Lookup(_ context.Context, hash []byte) (KeyRecord, error) {
	var (
		found  KeyRecord
		exists bool
	)
	for _, e := range s.entries {
		if VerifyHMAC(e.hash, hash) && !exists {
			found, exists = e.record, true
		}
	}
	if !exists {
		return KeyRecord{}, ErrInvalidKey
	}
	return found, nil
}

// Authenticator validates API keys using HMAC-SHA256 signatures.
// Holds in-memory secret map for O(1) lookup and a store for key verification.
type Authenticator struct {
	secrets map[string][]byte
	store   KeyStore
}

// NewAuthenticator creates an authenticator with HMAC secrets and a key store.
func NewAuthenticator(secrets map[string][]byte, store KeyStore) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		store:   store,
	}
}

// Authenticate validates an API key and returns its workspace.
// Returns a specific error for each failure mode.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (string, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	record, err := a.store.Lookup(ctx, ComputeHMAC(secret, apiKey))
	if errors.Is(err, ErrInvalidKey) {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyStore, err)
	}

	if record.Revoked {
		return "", ErrKeyRevoked
	}
	return record.Workspace, nil
}

// UnaryInterceptor returns gRPC interceptor that authenticates requests.
// Methods listed in skip (full method names) bypass authentication.
func (a *Authenticator) UnaryInterceptor(skip ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]bool, len(skip))
	for _, m := range skip {
		open[m] = true
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		apiKeys := md.Get(MetadataKey)
		if len(apiKeys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		workspace, err := a.Authenticate(ctx, apiKeys[0])
		if err != nil {
			return nil, status.Error(StatusCode(err), err.Error())
		}

		return handler(WithWorkspace(ctx, workspace), req)
	}
}

// StatusCode maps an authentication error to its gRPC code.
func StatusCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrKeyRevoked):
		return codes.PermissionDenied
	case errors.Is(err, ErrKeyStore):
		return codes.Unavailable
	default:
		return codes.Unauthenticated
	}
}

// WithWorkspace stores the authenticated workspace in ctx.
func WithWorkspace(ctx context.Context, workspace string) context.Context {
	return context.WithValue(ctx, workspaceKey, workspace)
}

// WorkspaceFromContext extracts the workspace from context.
// Returns empty string if not found.
func WorkspaceFromContext(ctx context.Context) string {
	if workspace, ok := ctx.Value(workspaceKey).(string); ok {
		return workspace
	}
	return ""
}
