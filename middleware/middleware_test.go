package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"camping/auth"
	"camping/middleware"
	"camping/utils"

	"github.com/julienschmidt/httprouter"
)

var secret = []byte("test_secret")

func noRoles(_ context.Context, _ string) (string, error) {
	return "", errors.New("no users")
}

func authedRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestAuthenticateRoundTrip(t *testing.T) {
	gate := middleware.NewAuth(secret, noRoles)
	token, err := auth.NewService(secret, time.Hour).Sign("amy@camp.test", "Amy")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	var gotEmail string
	handler := gate.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotEmail = utils.GetEmailFromRequest(r)
	})

	w := httptest.NewRecorder()
	handler(w, authedRequest(t, token), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotEmail != "amy@camp.test" {
		t.Fatalf("email = %q, want the issued identity", gotEmail)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	gate := middleware.NewAuth(secret, noRoles)
	svc := auth.NewService(secret, time.Hour)

	expired, err := auth.NewService(secret, -time.Minute).Sign("amy@camp.test", "Amy")
	if err != nil {
		t.Fatalf("Sign expired: %v", err)
	}
	valid, err := svc.Sign("amy@camp.test", "Amy")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	foreign, err := auth.NewService([]byte("other_secret"), time.Hour).Sign("amy@camp.test", "Amy")
	if err != nil {
		t.Fatalf("Sign foreign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"expired", expired},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"wrong key", foreign},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := gate.Authenticate(func(http.ResponseWriter, *http.Request, httprouter.Params) {
				called = true
			})

			w := httptest.NewRecorder()
			handler(w, authedRequest(t, tc.token), nil)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			if called {
				t.Fatal("handler must not run")
			}
		})
	}
}

func TestAuthenticateWS(t *testing.T) {
	gate := middleware.NewAuth(secret, noRoles)
	token, err := auth.NewService(secret, time.Hour).Sign("amy@camp.test", "Amy")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"valid token", "?token=" + token, http.StatusOK},
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "?token=not-a-jwt", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotEmail string
			handler := gate.AuthenticateWS(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				gotEmail = utils.GetEmailFromRequest(r)
			})

			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest(http.MethodGet, "/ws/classes/cls1/seats"+tc.query, nil), nil)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			if tc.want == http.StatusOK && gotEmail != "amy@camp.test" {
				t.Fatalf("email = %q, want the issued identity", gotEmail)
			}
		})
	}
}

func TestRequireOwnEmail(t *testing.T) {
	gate := middleware.NewAuth(secret, noRoles)
	token, err := auth.NewService(secret, time.Hour).Sign("amy@camp.test", "Amy")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tests := []struct {
		name     string
		claimed  string
		want     int
		wantCall bool
	}{
		{"own email", "amy@camp.test", http.StatusOK, true},
		{"foreign email", "bob@camp.test", http.StatusForbidden, false},
		{"missing email", "", http.StatusBadRequest, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := middleware.Chain(
				gate.Authenticate,
				middleware.RequireOwnEmail(middleware.QueryEmail),
			)(func(http.ResponseWriter, *http.Request, httprouter.Params) {
				called = true
			})

			r := httptest.NewRequest(http.MethodGet, "/x?email="+tc.claimed, nil)
			r.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler(w, r, nil)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			if called != tc.wantCall {
				t.Fatalf("called = %v, want %v", called, tc.wantCall)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	roles := map[string]string{
		"root@camp.test": "admin",
		"amy@camp.test":  "",
	}
	lookup := func(_ context.Context, email string) (string, error) {
		role, ok := roles[email]
		if !ok {
			return "", errors.New("not found")
		}
		return role, nil
	}
	gate := middleware.NewAuth(secret, lookup)
	svc := auth.NewService(secret, time.Hour)

	tests := []struct {
		email string
		want  int
	}{
		{"root@camp.test", http.StatusOK},
		{"amy@camp.test", http.StatusForbidden},
		{"ghost@camp.test", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			token, err := svc.Sign(tc.email, "")
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}

			handler := middleware.Chain(
				gate.Authenticate,
				gate.RequireRole("admin"),
			)(func(http.ResponseWriter, *http.Request, httprouter.Params) {})

			w := httptest.NewRecorder()
			handler(w, authedRequest(t, token), nil)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
