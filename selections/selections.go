package selections

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

// SelectionStore is the slice of storage the selection service needs.
// *db.Store satisfies it; tests supply a fake.
type SelectionStore interface {
	FindClass(ctx context.Context, id string) (*models.AddedClass, error)
	InsertSelection(ctx context.Context, sel *models.SelectedClass) error
	SelectionsByEmail(ctx context.Context, email string) ([]models.SelectedClass, error)
	FindSelection(ctx context.Context, id string) (*models.SelectedClass, error)
	DeleteSelection(ctx context.Context, id string) (int64, error)
}

type Service struct {
	store SelectionStore
}

func NewService(store SelectionStore) *Service {
	return &Service{store: store}
}

// POST /api/selections: student records intent to enroll. The email is taken
// from the verified identity, never from the body.
func (s *Service) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var input struct {
		ClassID string `json:"classId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ClassID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "classId is required")
		return
	}

	cls, err := s.store.FindClass(ctx, input.ClassID)
	if err == db.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "class not found")
		return
	}
	if err != nil {
		log.Printf("Create selection: class lookup %s: %v", input.ClassID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if cls.Status != models.StatusApproved {
		utils.RespondWithError(w, http.StatusConflict, "class is not open for enrollment")
		return
	}

	sel := models.SelectedClass{
		ID:        utils.GetUUID(),
		ClassID:   cls.ID,
		ClassName: cls.Name,
		Image:     cls.Image,
		Price:     cls.Price,
		Email:     utils.GetEmailFromRequest(r),
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertSelection(ctx, &sel); err != nil {
		log.Printf("Create selection: insert: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to select class")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": sel.ID})
}

// GET /api/selections?email=: own pending selections (ownership enforced in
// routing).
func (s *Service) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sels, err := s.store.SelectionsByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		log.Printf("ListMine selections: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, sels)
}

// GET /api/selections/:id
func (s *Service) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sel, ok := s.ownSelection(w, r, ps.ByName("id"))
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sel)
}

// DELETE /api/selections/:id
func (s *Service) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sel, ok := s.ownSelection(w, r, ps.ByName("id"))
	if !ok {
		return
	}

	deleted, err := s.store.DeleteSelection(r.Context(), sel.ID)
	if err != nil {
		log.Printf("Delete selection %s: %v", sel.ID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete selection")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": deleted})
}

func (s *Service) ownSelection(w http.ResponseWriter, r *http.Request, id string) (*models.SelectedClass, bool) {
	sel, err := s.store.FindSelection(r.Context(), id)
	if err == db.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "selection not found")
		return nil, false
	}
	if err != nil {
		log.Printf("ownSelection %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if sel.Email != utils.GetEmailFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "forbidden access")
		return nil, false
	}
	return sel, true
}
