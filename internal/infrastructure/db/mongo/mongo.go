package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

const (
	usersCollection   = "users"
	clientsCollection = "clients"
	reportsCollection = "reports"
)

// Index names are matched against duplicate key errors to tell which unique
// constraint was violated.
const (
	idxUserEmail      = "users_email_unique"
	idxUserUsername   = "users_username_unique"
	idxClientUsername = "clients_username_unique"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the unique and lookup indexes of every collection.
// Email and username are sparse because client-role logins carry no email and
// self-registered accounts carry no username.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName(idxUserEmail).SetUnique(true).SetSparse(true),
			},
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName(idxUserUsername).SetUnique(true).SetSparse(true),
			},
			{Keys: bson.D{{Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
		},
		clientsCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName(idxClientUsername).SetUnique(true),
			},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
			{Keys: bson.D{{Key: "client_profile_id", Value: 1}}},
		},
		reportsCollection: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		},
	}

	for coll, indexes := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// violatedIndex returns the name of the unique index behind a duplicate key
// error, or "" when err is not one.
func violatedIndex(err error) string {
	if !mongo.IsDuplicateKeyError(err) {
		return ""
	}
	msg := err.Error()
	for _, name := range []string{idxUserEmail, idxUserUsername, idxClientUsername} {
		if strings.Contains(msg, name) {
			return name
		}
	}
	return "unknown"
}

// Transactor runs units of work inside a MongoDB multi-document transaction.
// Transactions require a replica set or sharded cluster.
type Transactor struct {
	client *mongo.Client
}

func NewTransactor(client *mongo.Client) *Transactor {
	return &Transactor{client: client}
}

// WithinTransaction passes fn a session context; repository calls made with it
// join the transaction. The driver retries fn on transient transaction errors.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
