package users

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"camping/db"
	"camping/models"
	"camping/utils"

	"github.com/julienschmidt/httprouter"
)

// UserStore is the slice of storage the user service needs. *db.Store
// satisfies it; tests supply a fake.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	ListAllUsers(ctx context.Context) ([]models.User, error)
	SetUserRole(ctx context.Context, id, role string) (matched, modified int64, err error)
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// RoleOf resolves an email to its stored role. Used by the role middleware.
func (s *Service) RoleOf(ctx context.Context, email string) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// POST /api/users: idempotent on email. An existing user yields a soft
// "already exists" message and no new document.
func (s *Service) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	_, err := s.store.FindUserByEmail(ctx, input.Email)
	if err == nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "user already exists"})
		return
	}
	if err != db.ErrNoDocuments {
		log.Printf("CreateUser: lookup failed for %s: %v", input.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	user := models.User{
		ID:        utils.GetUUID(),
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertUser(ctx, &user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			// Lost the race to a concurrent first sign-in.
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "user already exists"})
			return
		}
		log.Printf("CreateUser: insert failed for %s: %v", input.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": user.ID})
}

// GET /api/users: admin only.
func (s *Service) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := s.store.ListAllUsers(r.Context())
	if err != nil {
		log.Printf("ListUsers: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, users)
}

// GET /api/users/admin/:email: own email only (enforced in routing).
func (s *Service) AdminStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.roleStatus(w, r, ps.ByName("email"), "admin", models.RoleAdmin)
}

// GET /api/users/instructor/:email: own email only (enforced in routing).
func (s *Service) InstructorStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.roleStatus(w, r, ps.ByName("email"), "instructor", models.RoleInstructor)
}

func (s *Service) roleStatus(w http.ResponseWriter, r *http.Request, email, field, role string) {
	got, err := s.RoleOf(r.Context(), email)
	if err != nil && err != db.ErrNoDocuments {
		log.Printf("roleStatus: lookup failed for %s: %v", email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{field: got == role})
}

// PATCH /api/users/:id/admin: admin only.
func (s *Service) GrantAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.grantRole(w, r, ps.ByName("id"), models.RoleAdmin)
}

// PATCH /api/users/:id/instructor: admin only.
func (s *Service) GrantInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.grantRole(w, r, ps.ByName("id"), models.RoleInstructor)
}

func (s *Service) grantRole(w http.ResponseWriter, r *http.Request, id, role string) {
	matched, modified, err := s.store.SetUserRole(r.Context(), id, role)
	if err != nil {
		log.Printf("grantRole: update failed for %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	if matched == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": modified})
}
