package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/biportal/portal-api/internal/core/access"
	"github.com/biportal/portal-api/internal/core/domain"
)

type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(clientsCollection)}
}

type clientDoc struct {
	ID              string    `bson:"_id"`
	CompanyName     string    `bson:"company_name"`
	Username        string    `bson:"username"`
	CreatedBy       string    `bson:"created_by"`
	CreatedAt       time.Time `bson:"created_at"`
	ClientProfileID string    `bson:"client_profile_id,omitempty"`
}

func (d clientDoc) toDomain() *domain.Client {
	return &domain.Client{
		ID:              d.ID,
		CompanyName:     d.CompanyName,
		Username:        d.Username,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt.UTC(),
		ClientProfileID: d.ClientProfileID,
	}
}

// clientFilter translates a scope into a query. ok is false for a denying
// scope, which callers answer without touching the collection.
func clientFilter(scope access.ClientScope) (filter bson.M, ok bool) {
	if scope.Deny {
		return nil, false
	}
	filter = bson.M{}
	if scope.CreatedBy != "" {
		filter["created_by"] = scope.CreatedBy
	}
	if scope.ProfileID != "" {
		filter["client_profile_id"] = scope.ProfileID
	}
	return filter, true
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := clientDoc{
		ID:              c.ID,
		CompanyName:     c.CompanyName,
		Username:        c.Username,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		ClientProfileID: c.ClientProfileID,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if violatedIndex(err) != "" {
			return domain.ErrClientUsernameTaken
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *ClientRepository) findOne(ctx context.Context, filter bson.M) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a client by id within scope.
func (r *ClientRepository) FindByID(ctx context.Context, id string, scope access.ClientScope) (*domain.Client, error) {
	filter, ok := clientFilter(scope)
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	filter["_id"] = id
	return r.findOne(ctx, filter)
}

// LockByID bumps the client's lock counter and returns it. Inside a
// transaction this turns a concurrent delete of the client into a write
// conflict.
func (r *ClientRepository) LockByID(ctx context.Context, id string, scope access.ClientScope) (*domain.Client, error) {
	filter, ok := clientFilter(scope)
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	filter["_id"] = id

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	err := r.col.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"lock_seq": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("lock client: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByProfileID retrieves the client whose provisioned login is userID.
func (r *ClientRepository) FindByProfileID(ctx context.Context, userID string) (*domain.Client, error) {
	if userID == "" {
		return nil, domain.ErrClientNotFound
	}
	return r.findOne(ctx, bson.M{"client_profile_id": userID})
}

func (r *ClientRepository) List(ctx context.Context, scope access.ClientScope) ([]*domain.Client, error) {
	filter, ok := clientFilter(scope)
	if !ok {
		return []*domain.Client{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "company_name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}

	out := make([]*domain.Client, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, c.ID, bson.M{"$set": bson.M{
		"company_name": c.CompanyName,
		"username":     c.Username,
	}})
	if err != nil {
		if violatedIndex(err) != "" {
			return domain.ErrClientUsernameTaken
		}
		return fmt.Errorf("update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

func (r *ClientRepository) IDsCreatedBy(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"created_by": userID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find clients by creator: %w", err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode client ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *ClientRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete clients: %w", err)
	}
	return nil
}
