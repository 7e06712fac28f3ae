package entities

import (
	"time"

	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// ApiKeyEnvironment distinguishes sandbox from production keys.
type ApiKeyEnvironment string

const (
	ApiKeyEnvironmentSandbox    ApiKeyEnvironment = "sandbox"
	ApiKeyEnvironmentProduction ApiKeyEnvironment = "production"
)

// Permission is one of the fixed permission strings names.
type Permission string

const (
	PermissionWalletsRead       Permission = "wallets:read"
	PermissionWalletsWrite      Permission = "wallets:write"
	PermissionTransactionsRead  Permission = "transactions:read"
	PermissionTransactionsWrite Permission = "transactions:write"
	PermissionPayoutsWrite      Permission = "payouts:write"
)

// ApiKey is a credential belonging to one partner. The plaintext
// secret is never stored — only a SHA-256 hash of it — and it is
// revealed exactly once at creation, by the use case that generates it, never
// reconstructed from this entity.
type ApiKey struct {
	id          uuid.UUID
	partnerID   uuid.UUID
	hash        string
	environment ApiKeyEnvironment
	permissions map[Permission]struct{}
	active      bool
	expiresAt   *time.Time
	lastUsedAt  *time.Time
	createdAt   time.Time
}

// NewApiKey creates a new ApiKey wrapping a pre-computed hash of the secret.
// Hashing happens at the use case / crypto boundary (internal/pkg/apikeys),
// not inside the entity, to keep the entity free of crypto dependencies.
func NewApiKey(partnerID uuid.UUID, hash string, env ApiKeyEnvironment, permissions []Permission, expiresAt *time.Time) (*ApiKey, error) {
	if hash == "" {
		return nil, domainerrors.ValidationError{Field: "hash", Message: "hash is required"}
	}
	if env != ApiKeyEnvironmentSandbox && env != ApiKeyEnvironmentProduction {
		return nil, domainerrors.ValidationError{Field: "environment", Message: "must be sandbox or production"}
	}

	permSet := make(map[Permission]struct{}, len(permissions))
	for _, p := range permissions {
		permSet[p] = struct{}{}
	}

	return &ApiKey{
		id:          uuid.New(),
		partnerID:   partnerID,
		hash:        hash,
		environment: env,
		permissions: permSet,
		active:      true,
		expiresAt:   expiresAt,
		createdAt:   time.Now().UTC(),
	}, nil
}

// ReconstructApiKey rebuilds an ApiKey from persisted state.
func ReconstructApiKey(
	id, partnerID uuid.UUID,
	hash string,
	environment ApiKeyEnvironment,
	permissions []Permission,
	active bool,
	expiresAt, lastUsedAt *time.Time,
	createdAt time.Time,
) *ApiKey {
	permSet := make(map[Permission]struct{}, len(permissions))
	for _, p := range permissions {
		permSet[p] = struct{}{}
	}
	return &ApiKey{
		id:          id,
		partnerID:   partnerID,
		hash:        hash,
		environment: environment,
		permissions: permSet,
		active:      active,
		expiresAt:   expiresAt,
		lastUsedAt:  lastUsedAt,
		createdAt:   createdAt,
	}
}

func (k *ApiKey) ID() uuid.UUID                  { return k.id }
func (k *ApiKey) PartnerID() uuid.UUID           { return k.partnerID }
func (k *ApiKey) Hash() string                   { return k.hash }
func (k *ApiKey) Environment() ApiKeyEnvironment { return k.environment }
func (k *ApiKey) Active() bool                   { return k.active }
func (k *ApiKey) CreatedAt() time.Time           { return k.createdAt }
func (k *ApiKey) LastUsedAt() *time.Time         { return k.lastUsedAt }
func (k *ApiKey) ExpiresAt() *time.Time          { return k.expiresAt }

// Permissions returns the set of permission strings this key carries.
func (k *ApiKey) Permissions() []Permission {
	out := make([]Permission, 0, len(k.permissions))
	for p := range k.permissions {
		out = append(out, p)
	}
	return out
}

// HasPermission reports whether the key carries the named permission
// Route guards call this before dispatching to a handler.
func (k *ApiKey) HasPermission(p Permission) bool {
	_, ok := k.permissions[p]
	return ok
}

// IsUsable reports whether the key is active and not expired — the two
// conditions requires before looking up the owning partner.
func (k *ApiKey) IsUsable(now time.Time) bool {
	if !k.active {
		return false
	}
	if k.expiresAt != nil && now.After(*k.expiresAt) {
		return false
	}
	return true
}

// Deactivate revokes the key (admin action, or automatic on partner
// rejection).
func (k *ApiKey) Deactivate() {
	k.active = false
}

// MarkUsed records a best-effort lastUsedAt timestamp (failures
// do not block the call").
func (k *ApiKey) MarkUsed(at time.Time) {
	k.lastUsedAt = &at
}
