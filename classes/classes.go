package classes

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"camping/db"
	"camping/models"
	"camping/utils"

	"github.com/julienschmidt/httprouter"
)

// ClassStore is the slice of storage the class service needs. *db.Store
// satisfies it; tests supply a fake.
type ClassStore interface {
	ListCatalog(ctx context.Context) ([]models.CatalogClass, error)
	ClassesByStatus(ctx context.Context, status string) ([]models.AddedClass, error)
	ClassesByInstructor(ctx context.Context, email string) ([]models.AddedClass, error)
	InsertClass(ctx context.Context, cls *models.AddedClass) error
	FindClass(ctx context.Context, id string) (*models.AddedClass, error)
	DeleteClass(ctx context.Context, id string) (int64, error)
	SetClassStatus(ctx context.Context, id, status string) (matched, modified int64, err error)
	SetClassFeedback(ctx context.Context, id, feedback string) (matched, modified int64, err error)
	SetClassImage(ctx context.Context, id, image, thumbnail string) (matched, modified int64, err error)
}

// RoleLookup resolves an email to its stored role, for the admin bypass on
// submission reads.
type RoleLookup func(ctx context.Context, email string) (string, error)

type Service struct {
	store     ClassStore
	uploadDir string
	roleOf    RoleLookup
}

func NewService(store ClassStore, uploadDir string, roleOf RoleLookup) *Service {
	return &Service{store: store, uploadDir: uploadDir, roleOf: roleOf}
}

// GET /api/catalog: the static admin-seeded catalog.
func (s *Service) ListCatalog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	catalog, err := s.store.ListCatalog(r.Context())
	if err != nil {
		log.Printf("ListCatalog: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, catalog)
}

// GET /api/classes: approved submissions only; Pending and Denied classes
// never appear here.
func (s *Service) ListApproved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.list(w, r, models.StatusApproved)
}

// GET /api/admin/classes: every submission regardless of status.
func (s *Service) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.list(w, r, "")
}

// GET /api/submissions?email=: own submissions (ownership enforced in routing).
func (s *Service) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	result, err := s.store.ClassesByInstructor(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		log.Printf("classes list: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (s *Service) list(w http.ResponseWriter, r *http.Request, status string) {
	result, err := s.store.ClassesByStatus(r.Context(), status)
	if err != nil {
		log.Printf("classes list: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// POST /api/submissions: instructor submits a class for review.
func (s *Service) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var input struct {
		Name           string  `json:"name"`
		Image          string  `json:"image"`
		Price          float64 `json:"price"`
		AvailableSeats int     `json:"availableSeats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" || input.Price < 0 || input.AvailableSeats < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "name, non-negative price and seats are required")
		return
	}

	cls := models.AddedClass{
		ID:               utils.GetUUID(),
		Name:             input.Name,
		Image:            input.Image,
		InstructorName:   utils.GetNameFromRequest(r),
		InstructorEmail:  utils.GetEmailFromRequest(r),
		Price:            input.Price,
		AvailableSeats:   input.AvailableSeats,
		EnrolledStudents: 0,
		Status:           models.StatusPending,
		CreatedAt:        time.Now(),
	}

	if err := s.store.InsertClass(ctx, &cls); err != nil {
		log.Printf("Submit: insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to submit class")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": cls.ID})
}

// GET /api/submissions/:id: owner or admin. A Pending or Denied submission
// carries review details its instructor alone should see.
func (s *Service) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cls, err := s.store.FindClass(r.Context(), ps.ByName("id"))
	if err == db.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "class not found")
		return
	}
	if err != nil {
		log.Printf("Get class: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	email := utils.GetEmailFromRequest(r)
	if cls.InstructorEmail != email {
		role, err := s.roleOf(r.Context(), email)
		if err != nil || role != models.RoleAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "forbidden access")
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, cls)
}

// DELETE /api/submissions/:id: instructor removes an own submission.
func (s *Service) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")

	cls, ok := s.ownSubmission(w, r, id)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteClass(ctx, cls.ID)
	if err != nil {
		log.Printf("Delete class %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete class")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": deleted})
}

// ownSubmission loads a submission and enforces that the caller owns it.
// Writes the error response itself when it returns ok=false.
func (s *Service) ownSubmission(w http.ResponseWriter, r *http.Request, id string) (*models.AddedClass, bool) {
	cls, err := s.store.FindClass(r.Context(), id)
	if err == db.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "class not found")
		return nil, false
	}
	if err != nil {
		log.Printf("ownSubmission %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if cls.InstructorEmail != utils.GetEmailFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "forbidden access")
		return nil, false
	}
	return cls, true
}
