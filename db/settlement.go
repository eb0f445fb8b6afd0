package db

import (
	"context"
	"errors"

	"camping/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// The methods below back the settlement sequence. They are the only place a
// class's seat counters are mutated.

func (s *Store) FindSelection(ctx context.Context, id string) (*models.SelectedClass, error) {
	var sel models.SelectedClass
	if err := s.Selections.FindOne(ctx, bson.M{"_id": id}).Decode(&sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

func (s *Store) FindPaymentBySelection(ctx context.Context, selectionID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.Payments.FindOne(ctx, bson.M{"selection_id": selectionID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ErrDuplicate reports that a unique index rejected an insert.
var ErrDuplicate = errors.New("duplicate document")

func (s *Store) InsertPayment(ctx context.Context, p *models.Payment) error {
	_, err := s.Payments.InsertOne(ctx, p)
	if IsDup(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) DeleteSelection(ctx context.Context, id string) (int64, error) {
	res, err := s.Selections.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClaimSeat atomically takes one seat: the filter refuses classes with no
// seats left, so availableSeats can never go negative under concurrent
// settlements. Returns false when no seat could be claimed.
func (s *Store) ClaimSeat(ctx context.Context, classID string) (bool, error) {
	res, err := s.AddedClasses.UpdateOne(ctx,
		bson.M{"_id": classID, "available_seats": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"available_seats": -1, "enrolled_students": 1}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) ClassCounts(ctx context.Context, classID string) (seats, enrolled int, err error) {
	var cls models.AddedClass
	if err := s.AddedClasses.FindOne(ctx, bson.M{"_id": classID}).Decode(&cls); err != nil {
		return 0, 0, err
	}
	return cls.AvailableSeats, cls.EnrolledStudents, nil
}

func (s *Store) InsertReconciliation(ctx context.Context, rec *models.Reconciliation) error {
	_, err := s.Reconciliations.InsertOne(ctx, rec)
	return err
}

// ErrNoDocuments re-exported so callers outside the storage layer do not need
// to import the driver for the common not-found check.
var ErrNoDocuments = mongo.ErrNoDocuments
