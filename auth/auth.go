package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"camping/middleware"
	"camping/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// Service issues signed credentials. Issuance takes the posted identity at
// face value; callers of this endpoint are trusted by construction.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl}
}

// Sign produces a token embedding the identity with the configured expiry.
func (s *Service) Sign(email, name string) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// POST /api/auth/token
func (s *Service) IssueToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := s.Sign(input.Email, input.Name)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token})
}
