package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func init() { gin.SetMode(gin.TestMode) }

func TestVerifyEmailAndSubject(t *testing.T) {
	v := NewVerifier("s3cret")

	tok, err := v.Issue("a@x.com", time.Minute)
	require.NoError(t, err)
	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id)

	// subject only
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "b@x.com"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	id, err = v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", id)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("s3cret")

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrNoToken)

	other, err := NewVerifier("other").Issue("a@x.com", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Issue("a@x.com", -time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	anon, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = v.Verify(anon)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "a@x.com"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthMiddleware(t *testing.T) {
	v := NewVerifier("s3cret")
	r := gin.New()
	r.GET("/me", Auth(v), func(c *gin.Context) {
		c.String(http.StatusOK, Identity(c))
	})
	tok, err := v.Issue("a@x.com", time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		url    string
		header string
		code   int
		body   string
	}{
		{"header", "/me", "Bearer " + tok, http.StatusOK, "a@x.com"},
		{"query", "/me?token=" + tok, "", http.StatusOK, "a@x.com"},
		{"missing", "/me", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/me", "Basic " + tok, http.StatusUnauthorized, ""},
		{"garbage", "/me", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

type emailReq struct{ email string }

func (r emailReq) GetEmail() string { return r.email }

func TestUnaryAuth(t *testing.T) {
	v := NewVerifier("s3cret")
	interceptor := UnaryAuth(v)
	tok, err := v.Issue("a@x.com", time.Minute)
	require.NoError(t, err)

	handler := func(ctx context.Context, req any) (any, error) {
		id, ok := IdentityFrom(ctx)
		require.True(t, ok)
		return id, nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/lovetown.v1.MatchService/FindMatch"}
	withToken := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))

	out, err := interceptor(withToken, emailReq{"a@x.com"}, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", out)

	_, err = interceptor(withToken, emailReq{"b@x.com"}, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = interceptor(context.Background(), emailReq{"a@x.com"}, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
