package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestMiddleware_ValidToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(42, RoleDoctor)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(testSecret)(func(c echo.Context) error {
		ctx := c.Request().Context()
		if got := PersonIDFromContext(ctx); got != 42 {
			t.Errorf("person id = %d, want 42", got)
		}
		if got := RoleFromContext(ctx); got != RoleDoctor {
			t.Errorf("role = %q, want %q", got, RoleDoctor)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	rec := doRequest(t, Middleware(testSecret), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	rec := doRequest(t, Middleware(testSecret), "Basic abc123")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("other-secret", time.Hour)
	token, _ := issuer.Issue(1, RoleAdmin)
	rec := doRequest(t, Middleware(testSecret), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, -time.Minute)
	token, _ := issuer.Issue(1, RoleAdmin)
	rec := doRequest(t, Middleware(testSecret), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	cases := []struct {
		name     string
		role     string
		required []string
		status   int
	}{
		{"matching role", RoleReception, []string{RoleReception}, http.StatusOK},
		{"one of several", RoleDoctor, []string{RoleReception, RoleDoctor}, http.StatusOK},
		{"admin passes everything", RoleAdmin, []string{RoleDoctor}, http.StatusOK},
		{"wrong role", RoleDoctor, []string{RoleReception}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, _ := issuer.Issue(1, tc.role)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Middleware(testSecret)(RequireRole(tc.required...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}))
			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}
