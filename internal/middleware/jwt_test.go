package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, sub, role string) string {
    t.Helper()
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub":  sub,
        "role": role,
        "exp":  time.Now().Add(time.Hour).Unix(),
    })
    signed, err := tok.SignedString([]byte(secret))
    require.NoError(t, err)
    return signed
}

func protectedRequest(token string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
    e := echo.New()
    h := func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{"actor": c.Get("actor_id")})
    }
    for i := len(mw) - 1; i >= 0; i-- {
        h = mw[i](h)
    }
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    _ = h(e.NewContext(req, rec))
    return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
    rec := protectedRequest(signToken(t, testSecret, "admin-1", "ADMIN"), JWTAuth(testSecret))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "admin-1")
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
    rec := protectedRequest("", JWTAuth(testSecret))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
    rec := protectedRequest(signToken(t, "other-secret", "admin-1", "ADMIN"), JWTAuth(testSecret))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub":  "admin-1",
        "role": "ADMIN",
        "exp":  time.Now().Add(-time.Hour).Unix(),
    })
    signed, err := tok.SignedString([]byte(testSecret))
    require.NoError(t, err)
    rec := protectedRequest(signed, JWTAuth(testSecret))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
    admin := signToken(t, testSecret, "admin-1", "ADMIN")
    buyer := signToken(t, testSecret, "user-7", "CUSTOMER")

    rec := protectedRequest(admin, JWTAuth(testSecret), RequireRole("ADMIN"))
    assert.Equal(t, http.StatusOK, rec.Code)

    rec = protectedRequest(buyer, JWTAuth(testSecret), RequireRole("ADMIN"))
    assert.Equal(t, http.StatusForbidden, rec.Code)
}
