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

type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(reportsCollection)}
}

type reportDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	ClientID  string    `bson:"client_id"`
	EmbedURL  string    `bson:"power_bi_embed_url"`
	Type      string    `bson:"type"`
	CreatedBy string    `bson:"created_by"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toReportDoc(r *domain.Report) reportDoc {
	return reportDoc{
		ID:        r.ID,
		Name:      r.Name,
		ClientID:  r.ClientID,
		EmbedURL:  r.EmbedURL,
		Type:      string(r.Type),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (d reportDoc) toDomain() *domain.Report {
	return &domain.Report{
		ID:        d.ID,
		Name:      d.Name,
		ClientID:  d.ClientID,
		EmbedURL:  d.EmbedURL,
		Type:      domain.ReportType(d.Type),
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func reportFilter(scope access.ReportScope) (filter bson.M, ok bool) {
	if scope.Deny {
		return nil, false
	}
	filter = bson.M{}
	if scope.CreatedBy != "" {
		filter["created_by"] = scope.CreatedBy
	}
	if scope.ClientID != "" {
		filter["client_id"] = scope.ClientID
	}
	return filter, true
}

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toReportDoc(rep)); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string, scope access.ReportScope) (*domain.Report, error) {
	filter, ok := reportFilter(scope)
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	filter["_id"] = id

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns the reports inside scope, newest first.
func (r *ReportRepository) List(ctx context.Context, scope access.ReportScope) ([]*domain.Report, error) {
	filter, ok := reportFilter(scope)
	if !ok {
		return []*domain.Report{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var docs []reportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	out := make([]*domain.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ReportRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) Update(ctx context.Context, rep *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, rep.ID, bson.M{"$set": bson.M{
		"name":               rep.Name,
		"client_id":          rep.ClientID,
		"power_bi_embed_url": rep.EmbedURL,
		"type":               string(rep.Type),
		"updated_at":         rep.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

func (r *ReportRepository) DeleteByClientIDs(ctx context.Context, clientIDs []string) error {
	if len(clientIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"client_id": bson.M{"$in": clientIDs}}); err != nil {
		return fmt.Errorf("delete client reports: %w", err)
	}
	return nil
}

func (r *ReportRepository) DeleteByCreator(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"created_by": userID}); err != nil {
		return fmt.Errorf("delete reports by creator: %w", err)
	}
	return nil
}
