package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/pkg/metrics"
)

// MongoStore implements Store over a MongoDB collection of score documents.
// Appends are per-document atomic inserts; the best-score aggregation runs
// server-side.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection

	connectTimeout time.Duration
}

// NewMongoStore connects to uri and binds the store to database/collection.
func NewMongoStore(ctx context.Context, uri, database, collection string, opts ...MongoOption) (*MongoStore, error) {
	s := &MongoStore{
		connectTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.client = client
	s.coll = client.Database(database).Collection(collection)
	return s, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return nil
}

// Append implements Store.Append.
func (s *MongoStore) Append(ctx context.Context, event model.ScoreEvent) (string, error) {
	if err := validate(event); err != nil {
		return "", err
	}

	start := time.Now()
	res, err := s.coll.InsertOne(ctx, event)
	metrics.RecordStoreAppendLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreAppendError()
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	metrics.RecordStoreAppend()
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

// BestScores implements Store.BestScores with a server-side pipeline: filter
// the scope, sort score desc + submitted_at asc, then take the first document
// per user. The first document per group is the earliest event carrying that
// user's maximum score.
func (s *MongoStore) BestScores(ctx context.Context, scope model.Scope) ([]model.BestScore, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	pipeline := mongo.Pipeline{}
	if !scope.IsGlobal() {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "chat_id", Value: scope.ChatID()},
		}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "score", Value: -1},
			{Key: "submitted_at", Value: 1},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "first_name", Value: bson.D{{Key: "$first", Value: "$first_name"}}},
			{Key: "score", Value: bson.D{{Key: "$first", Value: "$score"}}},
			{Key: "submitted_at", Value: bson.D{{Key: "$first", Value: "$submitted_at"}}},
		}}},
	)

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var rows []struct {
		UserID      string    `bson:"_id"`
		DisplayName string    `bson:"first_name"`
		Score       int       `bson:"score"`
		FirstAt     time.Time `bson:"submitted_at"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	out := make([]model.BestScore, len(rows))
	for i, row := range rows {
		out[i] = model.BestScore{
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			Score:       row.Score,
			FirstAt:     row.FirstAt,
		}
	}
	return out, nil
}

// Count implements Store.Count via a distinct query.
func (s *MongoStore) Count(ctx context.Context, scope model.Scope) (int, error) {
	filter := bson.D{}
	if !scope.IsGlobal() {
		filter = bson.D{{Key: "chat_id", Value: scope.ChatID()}}
	}
	users, err := s.coll.Distinct(ctx, "user_id", filter)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return len(users), nil
}
