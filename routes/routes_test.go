package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"camping/auth"
	"camping/classes"
	"camping/db"
	"camping/middleware"
	"camping/models"
	"camping/payments"
	"camping/ratelim"
	"camping/routes"
	"camping/seatfeed"
	"camping/selections"
	"camping/stripe"
	"camping/users"

	"github.com/julienschmidt/httprouter"
)

var secret = []byte("route_test_secret")

// fakeStore satisfies the per-service store interfaces with a single
// submission and a single user on record.
type fakeStore struct {
	submission *models.AddedClass
	owner      *models.User
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.owner != nil && f.owner.Email == email {
		return f.owner, nil
	}
	return nil, db.ErrNoDocuments
}

func (f *fakeStore) InsertUser(context.Context, *models.User) error { return nil }

func (f *fakeStore) ListAllUsers(context.Context) ([]models.User, error) {
	return []models.User{}, nil
}

func (f *fakeStore) SetUserRole(context.Context, string, string) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeStore) ListCatalog(context.Context) ([]models.CatalogClass, error) {
	return []models.CatalogClass{}, nil
}

func (f *fakeStore) ClassesByStatus(context.Context, string) ([]models.AddedClass, error) {
	return []models.AddedClass{}, nil
}

func (f *fakeStore) ClassesByInstructor(context.Context, string) ([]models.AddedClass, error) {
	return []models.AddedClass{}, nil
}

func (f *fakeStore) InsertClass(context.Context, *models.AddedClass) error { return nil }

func (f *fakeStore) FindClass(_ context.Context, id string) (*models.AddedClass, error) {
	if f.submission != nil && f.submission.ID == id {
		return f.submission, nil
	}
	return nil, db.ErrNoDocuments
}

func (f *fakeStore) DeleteClass(context.Context, string) (int64, error) { return 0, nil }

func (f *fakeStore) SetClassStatus(context.Context, string, string) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeStore) SetClassFeedback(context.Context, string, string) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeStore) SetClassImage(context.Context, string, string, string) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeStore) InsertSelection(context.Context, *models.SelectedClass) error { return nil }

func (f *fakeStore) SelectionsByEmail(context.Context, string) ([]models.SelectedClass, error) {
	return []models.SelectedClass{}, nil
}

func (f *fakeStore) FindSelection(context.Context, string) (*models.SelectedClass, error) {
	return nil, db.ErrNoDocuments
}

func (f *fakeStore) DeleteSelection(context.Context, string) (int64, error) { return 0, nil }

func testRouter(t *testing.T, st *fakeStore) *httprouter.Router {
	t.Helper()

	userSvc := users.NewService(st)
	gate := middleware.NewAuth(secret, userSvc.RoleOf)
	feed := seatfeed.NewFeed()

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Deps{
		Auth:        gate,
		RateLimiter: ratelim.NewRateLimiter(),
		Tokens:      auth.NewService(secret, time.Hour),
		Users:       userSvc,
		Classes:     classes.NewService(st, t.TempDir(), userSvc.RoleOf),
		Selections:  selections.NewService(st),
		Payments:    payments.NewService(nil, nil, stripe.New(""), feed, secret),
		Idem:        payments.NewIdempotency(nil),
		Feed:        feed,
	})
	return router
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter(t, &fakeStore{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/admin/amy@camp.test"},
		{http.MethodPatch, "/api/users/u1/admin"},
		{http.MethodPost, "/api/submissions"},
		{http.MethodGet, "/api/submissions?email=amy@camp.test"},
		{http.MethodGet, "/api/submissions/cls1"},
		{http.MethodDelete, "/api/submissions/cls1"},
		{http.MethodPut, "/api/submissions/cls1/status"},
		{http.MethodGet, "/api/admin/classes"},
		{http.MethodGet, "/ws/classes/cls1/seats"},
		{http.MethodPost, "/api/selections"},
		{http.MethodGet, "/api/selections/sel1"},
		{http.MethodPost, "/api/payments"},
		{http.MethodPost, "/api/payments/intent"},
		{http.MethodGet, "/api/payments?email=amy@camp.test"},
		{http.MethodGet, "/api/payments/p1/receipt"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401 before any handler runs", w.Code)
			}
		})
	}
}

func TestSubmissionFetchScopedToOwner(t *testing.T) {
	st := &fakeStore{
		submission: &models.AddedClass{
			ID:              "cls1",
			Name:            "Kayaking",
			InstructorEmail: "ina@camp.test",
			Status:          models.StatusPending,
		},
	}
	router := testRouter(t, st)
	svc := auth.NewService(secret, time.Hour)

	tests := []struct {
		name  string
		email string
		want  int
	}{
		{"owner", "ina@camp.test", http.StatusOK},
		{"other user", "bob@camp.test", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := svc.Sign(tc.email, "")
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}

			r := httptest.NewRequest(http.MethodGet, "/api/submissions/cls1", nil)
			r.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestPublicListingsNeedNoToken(t *testing.T) {
	router := testRouter(t, &fakeStore{})

	for _, path := range []string{"/api/catalog", "/api/classes"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, w.Code)
		}
	}
}
