// Package middleware - authentication. PayFlow has two distinct auth
// schemes: partner API keys (Bearer sk_(test|live)_...) on
// the partner-facing surface, and a signed session cookie on the internal
// admin surface. They are kept as separate middlewares rather than one
// generic Auth so each can fail in the shape its surface expects.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	"github.com/Haleralex/payflow/internal/pkg/apikeys"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AuthPartnerIDKey   = "auth_partner_id"
	AuthApiKeyIDKey    = "auth_api_key_id"
	AuthEnvironmentKey = "auth_environment"
	AuthPermissionsKey = "auth_permissions"

	AuthAdminSubjectKey = "auth_admin_subject"
)

// ApiKeyAuthConfig wires the repositories ApiKeyAuth resolves credentials
// against: keys by hash, then the key's owning partner.
type ApiKeyAuthConfig struct {
	ApiKeyRepo  ports.ApiKeyRepository
	PartnerRepo ports.PartnerRepository
}

// ApiKeyAuth authenticates partner API requests: extract the bearer secret,
// hash it, look up the owning key by hash, reject if the key is not usable,
// load the key's partner and reject unless it is approved, then attach
// partnerId/environment/permissions to the request context.
// Recording lastUsedAt failures never blocks the call.
func ApiKeyAuth(config ApiKeyAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, ok := extractBearer(c)
		if !ok {
			abortUnauthorized(c, "missing bearer credentials")
			return
		}

		hash := apikeys.Hash(secret)
		key, err := config.ApiKeyRepo.FindByHash(c.Request.Context(), hash)
		if err != nil || key == nil {
			abortUnauthorized(c, "invalid api key")
			return
		}
		if !key.IsUsable(time.Now().UTC()) {
			abortUnauthorized(c, "api key is revoked or expired")
			return
		}

		// A key only authenticates while its partner is approved; a
		// suspended or pending partner's credentials stop working outright.
		partner, err := config.PartnerRepo.FindByID(c.Request.Context(), key.PartnerID())
		if err != nil || partner == nil || !partner.IsApproved() {
			abortUnauthorized(c, "partner is not approved")
			return
		}

		key.MarkUsed(time.Now().UTC())
		_ = config.ApiKeyRepo.Save(c.Request.Context(), key)

		c.Set(AuthPartnerIDKey, key.PartnerID())
		c.Set(AuthApiKeyIDKey, key.ID())
		c.Set(AuthEnvironmentKey, key.Environment())
		c.Set(AuthPermissionsKey, key.Permissions())

		c.Next()
	}
}

// RequirePermission aborts with 403 unless the authenticated key carries
// perm.
func RequirePermission(perm entities.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := GetAuthPermissions(c)
		for _, p := range perms {
			if p == perm {
				c.Next()
				return
			}
		}
		abortForbidden(c, "api key lacks required permission: "+string(perm))
	}
}

func extractBearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"kind": "authentication", "message": message},
	})
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error":   gin.H{"kind": "forbidden", "message": message},
	})
}

// GetAuthPartnerID returns the partner id attached by ApiKeyAuth.
func GetAuthPartnerID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(AuthPartnerIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetAuthApiKeyID returns the API key id attached by ApiKeyAuth; the rate
// limiter buckets on it.
func GetAuthApiKeyID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(AuthApiKeyIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetAuthPermissions returns the permission set attached by ApiKeyAuth.
func GetAuthPermissions(c *gin.Context) []entities.Permission {
	if v, exists := c.Get(AuthPermissionsKey); exists {
		if perms, ok := v.([]entities.Permission); ok {
			return perms
		}
	}
	return nil
}

// ===== Admin session auth =====
//
// The admin login flow lives elsewhere; only the resulting
// session's signed JWT is verified here.

// AdminClaims is the payload of the admin session cookie/token.
type AdminClaims struct {
	Subject string
	Exp     time.Time
}

// AdminAuth validates the admin session token from the Authorization header
// or the "payflow_admin_session" cookie.
func AdminAuth(secret, issuer string) gin.HandlerFunc {
	validate := newAdminTokenValidator(secret, issuer)
	return func(c *gin.Context) {
		token, ok := extractBearer(c)
		if !ok {
			if cookie, err := c.Cookie("payflow_admin_session"); err == nil && cookie != "" {
				token, ok = cookie, true
			}
		}
		if !ok {
			abortUnauthorized(c, "missing admin session")
			return
		}

		claims, err := validate(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired admin session")
			return
		}
		if claims.Exp.Before(time.Now()) {
			abortUnauthorized(c, "admin session has expired")
			return
		}

		c.Set(AuthAdminSubjectKey, claims.Subject)
		c.Next()
	}
}

func newAdminTokenValidator(secret, issuer string) func(string) (*AdminClaims, error) {
	return func(tokenString string) (*AdminClaims, error) {
		parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil {
			return nil, err
		}
		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok || !parsed.Valid {
			return nil, jwt.ErrTokenInvalidClaims
		}
		if issuer != "" {
			if iss, _ := claims["iss"].(string); iss != issuer {
				return nil, jwt.ErrTokenInvalidIssuer
			}
		}
		sub, _ := claims["sub"].(string)
		exp := time.Time{}
		if expFloat, ok := claims["exp"].(float64); ok {
			exp = time.Unix(int64(expFloat), 0)
		}
		return &AdminClaims{Subject: sub, Exp: exp}, nil
	}
}

// GenerateAdminSessionToken signs a new admin session JWT (HS256).
func GenerateAdminSessionToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": issuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GetAuthAdminSubject returns the authenticated admin's subject claim.
func GetAuthAdminSubject(c *gin.Context) string {
	if v, exists := c.Get(AuthAdminSubjectKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
