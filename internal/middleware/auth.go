// Package middleware turns bearer tokens issued by the identity provider
// into a verified user identity for the HTTP and gRPC surfaces.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// IdentityKey is where the verified email is stored on the gin context.
const IdentityKey = "identity"

var (
	ErrNoToken      = errors.New("no authorization token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the identity. Providers put the email either in a
// dedicated claim or in the subject.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// Verifier checks HMAC-signed tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

// Verify returns the identity a token was issued for.
func (v *Verifier) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}
	id := strings.TrimSpace(claims.Identity())
	if id == "" {
		return "", fmt.Errorf("%w: no email or subject claim", ErrInvalidToken)
	}
	return id, nil
}

// Issue signs a token for email. Used by tests and local tooling; production
// tokens come from the identity provider.
func (v *Verifier) Issue(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// Auth rejects requests without a valid token. Browsers cannot set headers
// on websocket upgrades, so ?token= is accepted as well.
func Auth(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := c.Query("token")
		if h := c.GetHeader("Authorization"); h != "" {
			var ok bool
			if token, ok = bearer(h); !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid authorization header",
					"message": "format should be: Bearer <token>",
				})
				return
			}
		}

		id, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "authentication required",
				"message": err.Error(),
			})
			return
		}
		c.Set(IdentityKey, id)
		c.Next()
	}
}

// Identity returns the email Auth verified.
func Identity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}

type identityKey struct{}

// WithIdentity stores a verified identity on ctx.
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, identityKey{}, email)
}

// IdentityFrom reads what WithIdentity stored.
func IdentityFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}

// UnaryAuth verifies the "authorization" metadata of every call. Requests
// naming a user must name the caller.
func UnaryAuth(v *Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var token string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				token, _ = bearer(vals[0])
			}
		}
		id, err := v.Verify(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		if r, ok := req.(interface{ GetEmail() string }); ok && r.GetEmail() != "" && r.GetEmail() != id {
			return nil, status.Errorf(codes.PermissionDenied, "%s cannot act for %s", id, r.GetEmail())
		}
		return handler(WithIdentity(ctx, id), req)
	}
}
