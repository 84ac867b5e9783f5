package store

import (
	"context"
	"errors"
	"sync"

	"keijiban/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const boardDocID = "board"

// MongoStore keeps the same whole-document contract as FileStore, stored
// as a single document in one collection. It exists for deployments where
// a local file is not an option; the access pattern stays load/replace.
type MongoStore struct {
	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection
	seed   Seed
}

type mongoDoc struct {
	ID    string          `bson:"_id"`
	Board models.Document `bson:"board"`
}

func ConnectMongo(ctx context.Context, uri, dbName string, seed Seed) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection("board"),
		seed:   seed,
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *MongoStore) Update(ctx context.Context, fn func(*models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(ctx, doc)
}

func (s *MongoStore) load(ctx context.Context) (*models.Document, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": boardDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		seeded := s.seed()
		if err := s.write(ctx, seeded); err != nil {
			return nil, err
		}
		return seeded, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Board.Posts == nil {
		doc.Board.Posts = []models.Post{}
	}
	return &doc.Board, nil
}

func (s *MongoStore) write(ctx context.Context, doc *models.Document) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": boardDocID},
		mongoDoc{ID: boardDocID, Board: *doc},
		options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
