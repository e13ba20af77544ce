package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestJWTRoundTripCarriesClaims(t *testing.T) {
	token, err := GenerateJWT("user-1", true, true, "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateJWT(token, "secret")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if !claims.Verified {
		t.Error("Verified flag lost in round trip")
	}
	if !claims.Admin {
		t.Error("Admin claim lost in round trip")
	}
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-1", true, false, "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateJWT(token, "other-secret"); err == nil {
		t.Error("expected validation failure with the wrong secret")
	}
}

func TestMiddlewareSetsAdminFromToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	token, err := GenerateJWT("user-1", true, false, "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	Middleware("secret")(c)

	if c.IsAborted() {
		t.Fatalf("valid token rejected: %d", w.Code)
	}
	if UserID(c) != "user-1" {
		t.Errorf("UserID = %q, want user-1", UserID(c))
	}
	if c.GetBool("isAdmin") {
		t.Error("token without the admin claim must not grant admin")
	}
}

func TestMiddlewareGatewayHeaderIsNeverAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-User-ID", "user-1")

	Middleware("secret")(c)

	if c.IsAborted() {
		t.Fatal("gateway identity rejected")
	}
	if c.GetBool("isAdmin") {
		t.Error("gateway header must never grant admin")
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name      string
		admin     bool
		wantAbort bool
	}{
		{"admin passes", true, false},
		{"non-admin blocked", false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Set("isAdmin", tc.admin)

			RequireAdmin()(c)

			if c.IsAborted() != tc.wantAbort {
				t.Fatalf("aborted = %v, want %v", c.IsAborted(), tc.wantAbort)
			}
			if tc.wantAbort && w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
			}
		})
	}
}
