package payments

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

// lockTTL bounds how long a settlement may hold its per-selection lock.
const lockTTL = 5 * time.Second

// SettleStore is the slice of storage the settlement sequence needs.
// *db.Store satisfies it; tests supply a fake.
type SettleStore interface {
	FindSelection(ctx context.Context, id string) (*models.SelectedClass, error)
	FindPaymentBySelection(ctx context.Context, selectionID string) (*models.Payment, error)
	InsertPayment(ctx context.Context, p *models.Payment) error
	DeleteSelection(ctx context.Context, id string) (int64, error)
	ClaimSeat(ctx context.Context, classID string) (bool, error)
	InsertReconciliation(ctx context.Context, rec *models.Reconciliation) error
}

type settleRequest struct {
	SelectionID string  `json:"selectionId"`
	ClassID     string  `json:"classId"`
	Amount      float64 `json:"amount"`
	IntentID    string  `json:"intentId"`
}

// POST /api/payments: the settlement sequence. Serialized per selection via
// a Redis lock; the unique payment index is the guard of last resort.
func (s *Service) Settle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	email := utils.GetEmailFromRequest(r)

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SelectionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "selectionId is required")
		return
	}

	lockKey := "settle_lock:" + req.SelectionID
	acquired, err := s.rdx.SetNX(ctx, lockKey, "1", lockTTL).Result()
	if err != nil || !acquired {
		utils.RespondWithError(w, http.StatusTooManyRequests, "settlement in progress, please retry")
		return
	}
	defer func() {
		if err := s.rdx.Del(context.Background(), lockKey).Err(); err != nil {
			log.Printf("Settle: releasing %s: %v", lockKey, err)
		}
	}()

	result, status, classID := settle(ctx, s.store, email, req)
	if status == http.StatusOK && !result.Replayed {
		s.publishSeats(classID)
	}
	utils.RespondWithJSON(w, status, result)
}

// settle runs the three-step sequence against st and itemizes each step's
// outcome. It never reports bare success after a partial failure.
func settle(ctx context.Context, st SettleStore, email string, req settleRequest) (*models.SettlementResult, int, string) {
	result := &models.SettlementResult{}
	fail := func(step, detail string, status int) (*models.SettlementResult, int, string) {
		result.Steps = append(result.Steps, models.StepOutcome{Step: step, Detail: detail})
		return result, status, ""
	}

	// Preconditions: the selection must still be pending and owned by the caller.
	sel, err := st.FindSelection(ctx, req.SelectionID)
	if err == db.ErrNoDocuments {
		if prior, perr := st.FindPaymentBySelection(ctx, req.SelectionID); perr == nil && prior.Email == email {
			// Already settled and cleaned up: report the prior outcome.
			result.PaymentID = prior.ID
			result.Settled = true
			result.Replayed = true
			return result, http.StatusOK, ""
		}
		return fail("precondition", "selection not found", http.StatusNotFound)
	}
	if err != nil {
		return fail("precondition", "selection lookup failed", http.StatusInternalServerError)
	}
	if sel.Email != email {
		return fail("precondition", "selection belongs to another user", http.StatusForbidden)
	}
	if req.ClassID != "" && req.ClassID != sel.ClassID {
		return fail("precondition", "classId does not match the selection", http.StatusUnprocessableEntity)
	}
	if req.Amount != 0 && req.Amount != sel.Price {
		return fail("precondition", "amount does not match the selection price", http.StatusUnprocessableEntity)
	}

	// Step 1: persist the immutable payment. Nothing else runs if this fails.
	payment := &models.Payment{
		ID:          utils.GetUUID(),
		SelectionID: sel.ID,
		ClassID:     sel.ClassID,
		ClassName:   sel.ClassName,
		Email:       email,
		Amount:      sel.Price,
		Currency:    "usd",
		IntentID:    req.IntentID,
		CreatedAt:   time.Now(),
	}
	if err := st.InsertPayment(ctx, payment); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			if prior, perr := st.FindPaymentBySelection(ctx, sel.ID); perr == nil {
				result.PaymentID = prior.ID
				result.Settled = true
				result.Replayed = true
				// The selection survived the earlier run; clear it again.
				if _, derr := st.DeleteSelection(ctx, sel.ID); derr != nil {
					log.Printf("settle: replay cleanup of selection %s: %v", sel.ID, derr)
				}
				return result, http.StatusConflict, ""
			}
		}
		log.Printf("settle: payment insert for selection %s: %v", sel.ID, err)
		return fail("record_payment", "failed to record payment", http.StatusInternalServerError)
	}
	result.PaymentID = payment.ID
	result.Steps = append(result.Steps, models.StepOutcome{Step: "record_payment", OK: true})

	// Step 2: remove the pending selection. Already-gone is not fatal.
	deleted, err := st.DeleteSelection(ctx, sel.ID)
	if err != nil {
		log.Printf("settle: selection delete %s: %v", sel.ID, err)
		reconcile(ctx, st, payment, "remove_selection", err.Error())
		result.Steps = append(result.Steps, models.StepOutcome{Step: "remove_selection", Detail: "failed, queued for reconciliation"})
		return result, http.StatusBadGateway, ""
	}
	detail := ""
	if deleted == 0 {
		detail = "selection already removed"
	}
	result.Steps = append(result.Steps, models.StepOutcome{Step: "remove_selection", OK: true, Detail: detail})

	// Step 3: claim the seat with an atomic conditional update.
	claimed, err := st.ClaimSeat(ctx, sel.ClassID)
	if err != nil {
		log.Printf("settle: seat claim for class %s: %v", sel.ClassID, err)
		reconcile(ctx, st, payment, "claim_seat", err.Error())
		result.Steps = append(result.Steps, models.StepOutcome{Step: "claim_seat", Detail: "failed, queued for reconciliation"})
		return result, http.StatusBadGateway, ""
	}
	if !claimed {
		reconcile(ctx, st, payment, "claim_seat", "no seats available")
		result.Steps = append(result.Steps, models.StepOutcome{Step: "claim_seat", Detail: "no seats available"})
		return result, http.StatusConflict, ""
	}
	result.Steps = append(result.Steps, models.StepOutcome{Step: "claim_seat", OK: true})

	result.Settled = true
	return result, http.StatusOK, sel.ClassID
}

// reconcile records a settlement that kept its payment but failed a later
// step. The payment document itself stays untouched.
func reconcile(ctx context.Context, st SettleStore, p *models.Payment, step, reason string) {
	rec := &models.Reconciliation{
		ID:          utils.GetUUID(),
		PaymentID:   p.ID,
		SelectionID: p.SelectionID,
		ClassID:     p.ClassID,
		FailedStep:  step,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
	if err := st.InsertReconciliation(ctx, rec); err != nil {
		log.Printf("settle: writing reconciliation for payment %s: %v", p.ID, err)
	}
}

// publishSeats pushes the class's fresh counters to the seat feed, best effort.
func (s *Service) publishSeats(classID string) {
	if classID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	seats, enrolled, err := s.store.ClassCounts(ctx, classID)
	if err != nil {
		log.Printf("publishSeats: counts for class %s: %v", classID, err)
		return
	}
	s.feed.Publish(classID, seats, enrolled)
}
