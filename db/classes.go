package db

import (
	"context"

	"camping/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) ListCatalog(ctx context.Context) ([]models.CatalogClass, error) {
	cur, err := s.Catalog.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	catalog := []models.CatalogClass{}
	if err := cur.All(ctx, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// ClassesByStatus lists submitted classes in one review state; an empty
// status lists all of them.
func (s *Store) ClassesByStatus(ctx context.Context, status string) ([]models.AddedClass, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return s.listClasses(ctx, filter)
}

func (s *Store) ClassesByInstructor(ctx context.Context, email string) ([]models.AddedClass, error) {
	return s.listClasses(ctx, bson.M{"instructor_email": email})
}

func (s *Store) listClasses(ctx context.Context, filter bson.M) ([]models.AddedClass, error) {
	cur, err := s.AddedClasses.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := []models.AddedClass{}
	if err := cur.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) InsertClass(ctx context.Context, cls *models.AddedClass) error {
	_, err := s.AddedClasses.InsertOne(ctx, cls)
	return err
}

func (s *Store) FindClass(ctx context.Context, id string) (*models.AddedClass, error) {
	var cls models.AddedClass
	if err := s.AddedClasses.FindOne(ctx, bson.M{"_id": id}).Decode(&cls); err != nil {
		return nil, err
	}
	return &cls, nil
}

func (s *Store) DeleteClass(ctx context.Context, id string) (int64, error) {
	res, err := s.AddedClasses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) SetClassStatus(ctx context.Context, id, status string) (matched, modified int64, err error) {
	return s.setClassFields(ctx, id, bson.M{"status": status})
}

func (s *Store) SetClassFeedback(ctx context.Context, id, feedback string) (matched, modified int64, err error) {
	return s.setClassFields(ctx, id, bson.M{"feedback": feedback})
}

func (s *Store) SetClassImage(ctx context.Context, id, image, thumbnail string) (matched, modified int64, err error) {
	return s.setClassFields(ctx, id, bson.M{"image": image, "thumbnail": thumbnail})
}

func (s *Store) setClassFields(ctx context.Context, id string, fields bson.M) (matched, modified int64, err error) {
	res, err := s.AddedClasses.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return 0, 0, err
	}
	return res.MatchedCount, res.ModifiedCount, nil
}
