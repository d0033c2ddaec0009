package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mail-dispatch-service/internal/util"
	"mail-dispatch-service/pkg/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

func protectedEngine(allowedDomains ...string) *gin.Engine {
	r := gin.New()
	group := r.Group("/")
	group.Use(AuthMiddleware(testSecret))
	if len(allowedDomains) > 0 {
		group.Use(RequireSenderDomain(allowedDomains))
	}
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"sender": c.GetString("sender_email")})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedEngine()

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "NotBearer xyz").Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer garbage").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := util.GenerateJWT("teacher@school.edu", "Teacher", "other-secret")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+token).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := util.GenerateJWT("Teacher@School.EDU", "Teacher", testSecret)
		require.NoError(t, err)

		rec := doGet(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "teacher@school.edu", "sender email is lowercased")
	})
}

func TestRequireSenderDomain(t *testing.T) {
	r := protectedEngine("school.edu", "partner.org")

	token := func(email string) string {
		tok, err := util.GenerateJWT(email, "Someone", testSecret)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name  string
		email string
		want  int
	}{
		{"allowed domain", "teacher@school.edu", http.StatusOK},
		{"second allowed domain", "admin@partner.org", http.StatusOK},
		{"case-insensitive match", "teacher@SCHOOL.edu", http.StatusOK},
		{"foreign domain", "mallory@evil.example", http.StatusForbidden},
		{"subdomain is not the domain", "x@sub.school.edu", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doGet(r, token(tt.email)).Code)
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(200, trace.FromContext(c.Request.Context()))
	})

	t.Run("generates a trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Body.String())
		assert.Equal(t, rec.Body.String(), rec.Header().Get(trace.HeaderName()))
	})

	t.Run("propagates an incoming trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(trace.HeaderName(), "trace-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "trace-123", rec.Body.String())
	})
}
