package db

import (
	"context"

	"camping/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) InsertSelection(ctx context.Context, sel *models.SelectedClass) error {
	_, err := s.Selections.InsertOne(ctx, sel)
	return err
}

func (s *Store) SelectionsByEmail(ctx context.Context, email string) ([]models.SelectedClass, error) {
	cur, err := s.Selections.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	sels := []models.SelectedClass{}
	if err := cur.All(ctx, &sels); err != nil {
		return nil, err
	}
	return sels, nil
}
