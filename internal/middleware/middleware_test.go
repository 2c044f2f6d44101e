package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"portfolio-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"message":"Server error processing your request","data":null}`, w.Body.String())
}

func TestSessionAuth(t *testing.T) {
	manager := token.NewJWTManager("secret", time.Minute)
	valid, _, err := manager.GenerateToken("session-1")
	require.NoError(t, err)
	otherKey, _, err := token.NewJWTManager("other", time.Minute).GenerateToken("session-1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", SessionAuth(manager), func(c *gin.Context) {
		claims := c.MustGet("claims").(*token.SessionClaims)
		c.String(http.StatusOK, claims.SessionID)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "session-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"no bearer prefix", valid, http.StatusUnauthorized, ""},
		{"wrong signing key", "Bearer " + otherKey, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantStatus int
		wantAllow  string
	}{
		{"wildcard", []string{"*"}, "https://a.example", http.MethodGet, http.StatusOK, "*"},
		{"listed origin", []string{"https://a.example"}, "https://a.example", http.MethodGet, http.StatusOK, "https://a.example"},
		{"unlisted origin", []string{"https://a.example"}, "https://b.example", http.MethodGet, http.StatusOK, ""},
		{"preflight", []string{"*"}, "https://a.example", http.MethodOptions, http.StatusNoContent, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(r, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestLogger_PreservesBodies(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.String(http.StatusCreated, strings.ToUpper(string(body)))
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello")))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "HELLO", w.Body.String())
}
