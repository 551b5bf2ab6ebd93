package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showcase/internal/models"
	"showcase/internal/services"
	"showcase/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const secret = "test-secret"

func signToken(t *testing.T, key string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func setup(t *testing.T, allowDev bool) (*gin.Engine, *services.UserService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := testutil.NewDB(t)
	users := services.NewUserService(conn)
	auth := NewAuthenticator(secret, allowDev, users, services.NewNotificationService(conn), zap.NewNop())

	r := gin.New()
	r.Use(auth.LoadUser())
	r.GET("/whoami", func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role})
	})
	r.GET("/private", AuthRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, users
}

func get(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerTokenMirrorsUser(t *testing.T) {
	r, users := setup(t, false)
	id := uuid.New()
	token := signToken(t, secret, Claims{
		Email: "new@example.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	w := get(r, "/admin", map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	u, err := users.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("user was not mirrored: %v", err)
	}
	if u.Email != "new@example.com" || u.Role != models.RoleAdmin {
		t.Errorf("unexpected mirror %+v", u)
	}

	// 角色变化后再次登录会刷新本地用户
	token = signToken(t, secret, Claims{
		Email: "new@example.com",
		Role:  "student",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if w := get(r, "/admin", map[string]string{"Authorization": "Bearer " + token}); w.Code != http.StatusForbidden {
		t.Errorf("demoted user: expected 403, got %d", w.Code)
	}
}

func TestRejectsBadTokens(t *testing.T) {
	r, _ := setup(t, false)
	valid := jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	cases := map[string]string{
		"wrong key":     "Bearer " + signToken(t, "other-secret", Claims{RegisteredClaims: valid}),
		"expired":       "Bearer " + signToken(t, secret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}),
		"no expiry":     "Bearer " + signToken(t, secret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()}}),
		"bad subject":   "Bearer " + signToken(t, secret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: valid.ExpiresAt}}),
		"not bearer":    "Basic abc",
		"empty bearer":  "Bearer ",
		"garbage token": "Bearer abc.def.ghi",
	}
	for name, header := range cases {
		if w := get(r, "/whoami", map[string]string{"Authorization": header}); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, w.Code)
		}
	}
}

func TestAnonymousAndDevHeader(t *testing.T) {
	r, _ := setup(t, false)
	if w := get(r, "/whoami", nil); w.Code != http.StatusOK {
		t.Errorf("anonymous request should pass LoadUser, got %d", w.Code)
	}
	if w := get(r, "/private", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("AuthRequired: expected 401, got %d", w.Code)
	}

	// 非本地模式忽略开发用 header
	if w := get(r, "/private", map[string]string{DevUserHeader: uuid.NewString()}); w.Code != http.StatusUnauthorized {
		t.Errorf("dev header without local mode: expected 401, got %d", w.Code)
	}

	r, users := setup(t, true)
	u, err := users.Mirror(t.Context(), uuid.New(), "dev@example.com", models.RoleStudent)
	if err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}
	if w := get(r, "/private", map[string]string{DevUserHeader: u.ID.String()}); w.Code != http.StatusOK {
		t.Errorf("dev header in local mode: expected 200, got %d", w.Code)
	}
	if w := get(r, "/admin", map[string]string{DevUserHeader: u.ID.String()}); w.Code != http.StatusForbidden {
		t.Errorf("student on admin route: expected 403, got %d", w.Code)
	}
	if w := get(r, "/private", map[string]string{DevUserHeader: "nope"}); w.Code != http.StatusUnauthorized {
		t.Errorf("malformed dev header: expected 401, got %d", w.Code)
	}
}
