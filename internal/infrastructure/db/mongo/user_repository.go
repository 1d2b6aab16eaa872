package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biportal/portal-api/internal/core/domain"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// userDoc keeps email and username omitempty so the sparse unique indexes
// ignore accounts without them.
type userDoc struct {
	ID                 string     `bson:"_id"`
	Email              string     `bson:"email,omitempty"`
	Username           string     `bson:"username,omitempty"`
	PasswordHash       string     `bson:"password_hash"`
	Role               string     `bson:"role"`
	ClientID           string     `bson:"client_id,omitempty"`
	FirstName          string     `bson:"first_name"`
	LastName           string     `bson:"last_name"`
	PhoneNumber        string     `bson:"phone_number"`
	CompanyName        string     `bson:"company_name"`
	BusinessType       string     `bson:"business_type"`
	Subscription       string     `bson:"subscription"`
	SubscriptionExpiry *time.Time `bson:"subscription_expiry,omitempty"`
	Status             string     `bson:"status"`
	CreatedAt          time.Time  `bson:"created_at"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:                 u.ID,
		Email:              u.Email,
		Username:           u.Username,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		ClientID:           u.ClientID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		PhoneNumber:        u.PhoneNumber,
		CompanyName:        u.CompanyName,
		BusinessType:       u.BusinessType,
		Subscription:       u.Subscription,
		SubscriptionExpiry: u.SubscriptionExpiry,
		Status:             u.Status,
		CreatedAt:          u.CreatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:                 d.ID,
		Email:              d.Email,
		Username:           d.Username,
		PasswordHash:       d.PasswordHash,
		Role:               domain.Role(d.Role),
		ClientID:           d.ClientID,
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		PhoneNumber:        d.PhoneNumber,
		CompanyName:        d.CompanyName,
		BusinessType:       d.BusinessType,
		Subscription:       d.Subscription,
		SubscriptionExpiry: d.SubscriptionExpiry,
		Status:             d.Status,
		CreatedAt:          d.CreatedAt.UTC(),
	}
}

func userConflict(err error) error {
	switch violatedIndex(err) {
	case idxUserEmail:
		return domain.ErrEmailTaken
	case idxUserUsername, "unknown":
		return domain.ErrUsernameTaken
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toUserDoc(user)); err != nil {
		if conflict := userConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = string(role)
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) UpdateLogin(ctx context.Context, id, username, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"username": username}
	if passwordHash != "" {
		set["password_hash"] = passwordHash
	}
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if conflict := userConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) DeleteByClientIDs(ctx context.Context, clientIDs []string) error {
	if len(clientIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"client_id": bson.M{"$in": clientIDs}}); err != nil {
		return fmt.Errorf("delete client logins: %w", err)
	}
	return nil
}
