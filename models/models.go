package models

import (
	"time"
)

// User roles
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
)

// AddedClass review states
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusDenied   = "Denied"
)

// User is created on first sign-in; role is mutated only by admin grants.
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Role      string    `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CatalogClass is the static, admin-seeded catalog entry. Read-only to the API.
type CatalogClass struct {
	ID         string  `bson:"_id,omitempty" json:"id"`
	Name       string  `bson:"name" json:"name"`
	Image      string  `bson:"image,omitempty" json:"image,omitempty"`
	Instructor string  `bson:"instructor,omitempty" json:"instructor,omitempty"`
	Price      float64 `bson:"price" json:"price"`
	Seats      int     `bson:"seats" json:"seats"`
}

// AddedClass is an instructor-submitted class awaiting or past admin review.
type AddedClass struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	Name             string    `bson:"name" json:"name"`
	Image            string    `bson:"image,omitempty" json:"image,omitempty"`
	Thumbnail        string    `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	InstructorName   string    `bson:"instructor_name,omitempty" json:"instructorName,omitempty"`
	InstructorEmail  string    `bson:"instructor_email" json:"instructorEmail"`
	Price            float64   `bson:"price" json:"price"`
	AvailableSeats   int       `bson:"available_seats" json:"availableSeats"`
	EnrolledStudents int       `bson:"enrolled_students" json:"enrolledStudents"`
	Status           string    `bson:"status" json:"status"`
	Feedback         string    `bson:"feedback,omitempty" json:"feedback,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// SelectedClass is a student's pending intent to enroll, destroyed on
// settlement or explicit removal.
type SelectedClass struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	ClassID   string    `bson:"class_id" json:"classId"`
	ClassName string    `bson:"class_name,omitempty" json:"className,omitempty"`
	Image     string    `bson:"image,omitempty" json:"image,omitempty"`
	Price     float64   `bson:"price" json:"price"`
	Email     string    `bson:"email" json:"email"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Payment is immutable once written. SelectionID carries a unique index so a
// selection can never settle twice.
type Payment struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	SelectionID string    `bson:"selection_id" json:"selectionId"`
	ClassID     string    `bson:"class_id" json:"classId"`
	ClassName   string    `bson:"class_name,omitempty" json:"className,omitempty"`
	Email       string    `bson:"email" json:"email"`
	Amount      float64   `bson:"amount" json:"amount"`
	Currency    string    `bson:"currency" json:"currency"`
	IntentID    string    `bson:"intent_id,omitempty" json:"intentId,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Reconciliation records a settlement that persisted its payment but failed a
// later step, for operator follow-up. The payment itself is never mutated.
type Reconciliation struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	PaymentID   string    `bson:"payment_id" json:"paymentId"`
	SelectionID string    `bson:"selection_id" json:"selectionId"`
	ClassID     string    `bson:"class_id" json:"classId"`
	FailedStep  string    `bson:"failed_step" json:"failedStep"`
	Reason      string    `bson:"reason" json:"reason"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// StepOutcome itemizes one settlement step in the response.
type StepOutcome struct {
	Step   string `json:"step"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// SettlementResult is the full outcome of one settlement attempt.
type SettlementResult struct {
	PaymentID string        `json:"paymentId,omitempty"`
	Settled   bool          `json:"settled"`
	Replayed  bool          `json:"replayed,omitempty"`
	Steps     []StepOutcome `json:"steps,omitempty"`
}

// IdempotencyRecord is an Idempotency-Key record stored in Mongo.
type IdempotencyRecord struct {
	Key         string                 `bson:"key" json:"key"`
	Method      string                 `bson:"method" json:"method"`
	Path        string                 `bson:"path" json:"path"`
	Email       string                 `bson:"email" json:"email"`
	RequestHash string                 `bson:"request_hash" json:"request_hash"`
	Response    map[string]interface{} `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at" json:"expires_at"`
}
