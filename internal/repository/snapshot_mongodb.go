package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gw2vault-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBSnapshotRepository implements SnapshotRepository with one collection
// for snapshots and one for runs.
type MongoDBSnapshotRepository struct {
	client    *mongo.Client
	db        *mongo.Database
	snapshots *mongo.Collection
	runs      *mongo.Collection
}

var _ SnapshotRepository = (*MongoDBSnapshotRepository)(nil)

// NewMongoDBSnapshotRepository connects to uri and ensures the indexes exist.
func NewMongoDBSnapshotRepository(uri, database string) (*MongoDBSnapshotRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	r := &MongoDBSnapshotRepository{
		client:    client,
		db:        db,
		snapshots: db.Collection(snapshotsTable),
		runs:      db.Collection(runsTable),
	}

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{r.snapshots, mongo.IndexModel{Keys: bson.D{{Key: "key_hash", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{r.snapshots, mongo.IndexModel{Keys: bson.D{{Key: "updated_at", Value: 1}}}},
		{r.runs, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			log.Printf("[MongoDB] Warning: failed to create index on %s: %v", idx.coll.Name(), err)
		}
	}

	log.Printf("[MongoDB] Connected to %s", database)
	return r, nil
}

func (r *MongoDBSnapshotRepository) Save(ctx context.Context, s *model.StoredSnapshot) error {
	filter := bson.M{"key_hash": s.KeyHash}
	update := bson.M{
		"$set": bson.M{
			"account_name": s.AccountName,
			"data":         s.Data,
			"fetched_at":   s.FetchedAt.UTC(),
			"updated_at":   s.UpdatedAt.UTC(),
		},
	}

	_, err := r.snapshots.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *MongoDBSnapshotRepository) Get(ctx context.Context, keyHash string) (*model.StoredSnapshot, error) {
	var snap model.StoredSnapshot
	err := r.snapshots.FindOne(ctx, bson.M{"key_hash": keyHash}).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snap, nil
}

func (r *MongoDBSnapshotRepository) Delete(ctx context.Context, keyHash string) (bool, error) {
	result, err := r.snapshots.DeleteOne(ctx, bson.M{"key_hash": keyHash})
	if err != nil {
		return false, fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *MongoDBSnapshotRepository) DeleteStale(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold).UTC()

	result, err := r.snapshots.DeleteMany(ctx, bson.M{"updated_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale snapshots: %w", err)
	}

	if result.DeletedCount > 0 {
		log.Printf("[MongoDB] Cleaned up %d stale snapshots (threshold: %v)", result.DeletedCount, threshold)
	}
	return result.DeletedCount, nil
}

func (r *MongoDBSnapshotRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"driver": "MongoDB"}

	count, err := r.snapshots.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats["total_snapshots"] = count

	runs, err := r.runs.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats["total_runs"] = runs

	if failed, err := r.runs.CountDocuments(ctx, bson.M{"status": model.RunStatusFailed}); err == nil {
		stats["failed_runs"] = failed
	}

	var collStats bson.M
	if err := r.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: r.snapshots.Name()}}).Decode(&collStats); err == nil {
		switch size := collStats["size"].(type) {
		case int64:
			stats["db_size_bytes"] = size
		case int32:
			stats["db_size_bytes"] = int64(size)
		case float64:
			stats["db_size_bytes"] = int64(size)
		}
	}

	return stats, nil
}

func (r *MongoDBSnapshotRepository) InsertRun(ctx context.Context, run *model.CollectionRun) error {
	if _, err := r.runs.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (r *MongoDBSnapshotRepository) ListRuns(ctx context.Context, limit, offset int) ([]model.CollectionRun, int64, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.runs.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []model.CollectionRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, 0, err
	}
	if runs == nil {
		runs = []model.CollectionRun{}
	}

	total, err := r.runs.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

func (r *MongoDBSnapshotRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
