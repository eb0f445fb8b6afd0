package middleware

import (
	"context"
	"fmt"
	"net/http"

	"camping/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// RoleLookup resolves an email to its current role. Roles are read from
// storage on every guarded request so a grant takes effect without reissuing
// tokens.
type RoleLookup func(ctx context.Context, email string) (string, error)

type Auth struct {
	secret []byte
	roleOf RoleLookup
}

func NewAuth(secret []byte, roleOf RoleLookup) *Auth {
	return &Auth{secret: secret, roleOf: roleOf}
}

func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		if len(header) < 8 || header[:7] != "Bearer " {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		claims, err := a.ValidateJWT(header[7:])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(withIdentity(r.Context(), claims)), ps)
	}
}

// AuthenticateWS admits websocket clients. Browsers cannot set headers on a
// websocket dial, so the credential travels in a token query parameter.
func (a *Auth) AuthenticateWS(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := a.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(withIdentity(r.Context(), claims)), ps)
	}
}

// ValidateJWT parses and verifies a raw token string.
func (a *Auth) ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}

func withIdentity(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, globals.EmailKey, claims.Email)
	return context.WithValue(ctx, globals.NameKey, claims.Name)
}

// RequireRole gates a handler on the caller's stored role. Must run after
// Authenticate.
func (a *Auth) RequireRole(role string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			email, _ := r.Context().Value(globals.EmailKey).(string)
			if email == "" {
				http.Error(w, "Missing token", http.StatusUnauthorized)
				return
			}
			got, err := a.roleOf(r.Context(), email)
			if err != nil || got != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next(w, r, ps)
		}
	}
}

// EmailSource extracts the caller-claimed email from a request.
type EmailSource func(r *http.Request, ps httprouter.Params) string

func QueryEmail(r *http.Request, _ httprouter.Params) string {
	return r.URL.Query().Get("email")
}

func ParamEmail(_ *http.Request, ps httprouter.Params) string {
	return ps.ByName("email")
}

// RequireOwnEmail enforces that the claimed email matches the token-verified
// one. Applied to every route that reads or mutates one user's data.
func RequireOwnEmail(source EmailSource) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			claimed := source(r, ps)
			if claimed == "" {
				http.Error(w, "Email is required", http.StatusBadRequest)
				return
			}
			verified, _ := r.Context().Value(globals.EmailKey).(string)
			if claimed != verified {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next(w, r, ps)
		}
	}
}

// Chain composes handler wrappers left to right: the first wrapper is the
// outermost.
func Chain(wrappers ...func(httprouter.Handle) httprouter.Handle) func(httprouter.Handle) httprouter.Handle {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(wrappers) - 1; i >= 0; i-- {
			final = wrappers[i](final)
		}
		return final
	}
}
