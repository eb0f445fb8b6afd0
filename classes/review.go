package classes

import (
	"encoding/json"
	"log"
	"net/http"

	"camping/models"
	"camping/utils"

	"github.com/julienschmidt/httprouter"
)

// Admin review surface: status transitions and feedback.

var validStatuses = map[string]bool{
	models.StatusPending:  true,
	models.StatusApproved: true,
	models.StatusDenied:   true,
}

// PUT /api/submissions/:id/status: admin only.
func (s *Service) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || !validStatuses[input.Status] {
		utils.RespondWithError(w, http.StatusBadRequest, "status must be Pending, Approved or Denied")
		return
	}

	matched, modified, err := s.store.SetClassStatus(r.Context(), id, input.Status)
	if err != nil {
		log.Printf("UpdateStatus %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update class status")
		return
	}
	if matched == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "class not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": modified})
}

// POST /api/submissions/:id/feedback: admin only.
func (s *Service) AttachFeedback(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var input struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Feedback == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "feedback is required")
		return
	}

	matched, modified, err := s.store.SetClassFeedback(r.Context(), id, input.Feedback)
	if err != nil {
		log.Printf("AttachFeedback %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to send feedback")
		return
	}
	if matched == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "class not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": modified})
}
