package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dailybrief/pkg/domain"
)

// MongoStore keeps dispatch records in a MongoDB collection.
type MongoStore struct {
	mongoClient    *mongo.Client
	collection     *mongo.Collection
	uri            string
	databaseName   string
	collectionName string
}

// NewMongoStore constructs a Mongo store; call Connect before use
func NewMongoStore(uri, databaseName, collectionName string) *MongoStore {
	if collectionName == "" {
		collectionName = "dispatch_records"
	}
	return &MongoStore{
		uri:            uri,
		databaseName:   databaseName,
		collectionName: collectionName,
	}
}

// Connect establishes the connection and verifies it with a ping
func (s *MongoStore) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(s.uri)
	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	s.mongoClient = mongoClient
	s.collection = mongoClient.Database(s.databaseName).Collection(s.collectionName)
	return nil
}

// Get returns the record for key, or (nil, nil) when none exists
func (s *MongoStore) Get(ctx context.Context, key string) (*domain.DispatchRecord, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("mongo store not connected")
	}

	var record domain.DispatchRecord
	err := s.collection.FindOne(ctx, bson.M{"request_key": key}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find dispatch record: %w", err)
	}
	return &record, nil
}

// Put upserts the record keyed by request_key, last-write-wins
func (s *MongoStore) Put(ctx context.Context, record domain.DispatchRecord) error {
	if s.collection == nil {
		return fmt.Errorf("mongo store not connected")
	}

	filter := bson.M{"request_key": record.RequestKey}
	update := bson.M{"$set": record}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert dispatch record: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB
func (s *MongoStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}
