package db

import (
	"context"

	"camping/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.Users.InsertOne(ctx, u)
	if IsDup(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) ListAllUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserRole assigns a role and reports how many documents matched and how
// many actually changed. Matched zero means the user does not exist.
func (s *Store) SetUserRole(ctx context.Context, id, role string) (matched, modified int64, err error) {
	res, err := s.Users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		return 0, 0, err
	}
	return res.MatchedCount, res.ModifiedCount, nil
}
