package activity

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "activity_logs"

// リクエスト1件分のアクセス記録
type Entry struct {
	RequestID  string    `bson:"request_id" json:"request_id"`
	UserID     *int64    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Method     string    `bson:"method" json:"method"`
	Route      string    `bson:"route" json:"route"`
	IP         string    `bson:"ip" json:"ip"`
	StatusCode int       `bson:"status_code" json:"status_code"`
	LatencyMs  int64     `bson:"latency_ms" json:"latency_ms"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

func (s *MongoStore) Record(ctx context.Context, e Entry) error {
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// userIDがnilなら全体。新しい順
func (s *MongoStore) Recent(ctx context.Context, userID *int64, limit int64) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	filter := bson.M{}
	if userID != nil {
		filter["user_id"] = *userID
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cur.Close(ctx)

	out := []Entry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

// NopStore はMongo未設定時
type NopStore struct{}

func (NopStore) Record(context.Context, Entry) error { return nil }
func (NopStore) Recent(context.Context, *int64, int64) ([]Entry, error) {
	return []Entry{}, nil
}
func (NopStore) Close(context.Context) error { return nil }
