package utils

import (
	"camping/globals"
	"net/http"
)

// GetEmailFromRequest returns the token-verified email placed in the request
// context by the auth middleware, or "" when the request was not authenticated.
func GetEmailFromRequest(r *http.Request) string {
	email, ok := r.Context().Value(globals.EmailKey).(string)
	if !ok {
		return ""
	}
	return email
}

func GetNameFromRequest(r *http.Request) string {
	name, ok := r.Context().Value(globals.NameKey).(string)
	if !ok {
		return ""
	}
	return name
}
