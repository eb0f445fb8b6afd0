package payments

import (
	"encoding/json"
	"log"
	"net/http"

	"camping/db"
	"camping/models"
	"camping/seatfeed"
	"camping/stripe"
	"camping/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service handles payment intents, the settlement sequence and receipts.
type Service struct {
	store         *db.Store
	rdx           *redis.Client
	provider      *stripe.Client
	feed          *seatfeed.Feed
	receiptSecret []byte
}

func NewService(store *db.Store, rdx *redis.Client, provider *stripe.Client, feed *seatfeed.Feed, receiptSecret []byte) *Service {
	return &Service{
		store:         store,
		rdx:           rdx,
		provider:      provider,
		feed:          feed,
		receiptSecret: receiptSecret,
	}
}

// POST /api/payments/intent: create a provider card intent for a price.
// The returned client secret is what the frontend's card element consumes.
func (s *Service) CreateIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "a positive price is required")
		return
	}

	// provider works in the smallest currency unit
	amount := int64(input.Price * 100)
	intent, err := s.provider.CreateIntent(amount, "usd")
	if err != nil {
		log.Printf("CreateIntent: %v", err)
		utils.RespondWithError(w, http.StatusBadGateway, "failed to create payment intent")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"clientSecret": intent.ClientSecret})
}

// GET /api/payments?email=: own payments, newest first (ownership enforced
// in routing).
func (s *Service) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	email := r.URL.Query().Get("email")

	cur, err := s.store.Payments.Find(ctx, bson.M{"email": email},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		log.Printf("ListMine payments: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer cur.Close(ctx)

	pays := []models.Payment{}
	if err := cur.All(ctx, &pays); err != nil {
		log.Printf("ListMine payments decode: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, pays)
}
