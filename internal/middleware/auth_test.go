package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"affiliate-settlement-api/internal/config"
)

func signedRequest(t *testing.T, body, secret string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(body))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	req.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))
	return req
}

func TestAuthHMAC(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.C.Security.HMACSecret = "test-secret"

	r := gin.New()
	r.POST("/x", AuthHMAC(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/x", AuthHMAC(), func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("valid signature passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, signedRequest(t, `{"companyId":1}`, "test-secret"))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, signedRequest(t, `{"companyId":1}`, "other-secret"))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString("{}"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("reads pass through unsigned", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})
}
