// Package mongostore introspects a MongoDB deployment: collection
// stats, sampled flat schemas, random samples, and filtered queries.
//
// The client handle is created lazily on the first operation that
// needs it and held for the remainder of the process lifetime. A
// failed connection attempt surfaces immediately; the next call
// attempts again, but no call retries within itself.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Sentinel errors for consistent error handling by callers.
var (
	ErrNotConfigured = errors.New("MongoDB connection string not configured")
	ErrInvalidFilter = errors.New("invalid filter: not valid JSON")
)

// sampleLimit bounds the scan used for schema inference. The first
// documents returned by the store are the sample, not a true random
// sample.
const sampleLimit = 100

// CollectionStats is one entry of a collection listing.
type CollectionStats struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	Size  int64  `json:"size"`
}

// Field is one inferred field of a collection schema. Name is a
// dot-joined path for nested documents. Count is the number of
// sampled documents the path occurred in; it never exceeds the
// sample size.
type Field struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CollectionSchema is the inferred flat schema of one collection.
type CollectionSchema struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// QueryResult is the outcome of a filtered query: up to limit
// documents, the true total match count, and the parsed filter
// echoed back.
type QueryResult struct {
	Data  []bson.M       `json:"data"`
	Count int            `json:"count"`
	Total int64          `json:"total"`
	Query map[string]any `json:"query"`
}

// Options configures an Inspector.
type Options struct {
	// URI is the connection string. Empty disables the inspector.
	URI string
	// Database overrides the database name from the URI path.
	Database string
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Inspector runs introspection operations against one database.
type Inspector struct {
	uri      string
	database string
	log      *zap.Logger

	mu     sync.Mutex
	client *mongo.Client
}

// NewInspector creates an Inspector. No connection is attempted until
// the first operation.
func NewInspector(opts Options) *Inspector {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	database := opts.Database
	if database == "" {
		database = databaseFromURI(opts.URI)
	}
	if database == "" {
		database = "test"
	}
	return &Inspector{uri: opts.URI, database: database, log: log}
}

// Configured reports whether a connection string is set.
func (i *Inspector) Configured() bool {
	return i != nil && i.uri != ""
}

// Close disconnects the client if one was ever created.
func (i *Inspector) Close(ctx context.Context) error {
	i.mu.Lock()
	client := i.client
	i.client = nil
	i.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// db returns the shared database handle, connecting on first use.
// The mutex doubles as the single-initialization guard against
// duplicate concurrent connection attempts.
func (i *Inspector) db(ctx context.Context) (*mongo.Database, error) {
	if !i.Configured() {
		return nil, ErrNotConfigured
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.client == nil {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(i.uri))
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ping MongoDB: %w", err)
		}
		i.log.Info("connected to MongoDB", zap.String("database", i.database))
		i.client = client
	}

	return i.client.Database(i.database), nil
}

// ListCollections returns name, live document count, and storage size
// for every collection. One count and one collStats command per
// collection.
func (i *Inspector) ListCollections(ctx context.Context) ([]CollectionStats, error) {
	db, err := i.db(ctx)
	if err != nil {
		return nil, err
	}

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)

	stats := make([]CollectionStats, 0, len(names))
	for _, name := range names {
		count, err := db.Collection(name).CountDocuments(ctx, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}

		var collStats struct {
			Size int64 `bson:"size"`
		}
		if err := db.RunCommand(ctx, bson.D{{Key: "collStats", Value: name}}).Decode(&collStats); err != nil {
			i.log.Warn("collStats failed", zap.String("collection", name), zap.Error(err))
		}

		stats = append(stats, CollectionStats{Name: name, Count: count, Size: collStats.Size})
	}
	return stats, nil
}

// CollectionExists reports whether a collection with the exact name
// exists.
func (i *Inspector) CollectionExists(ctx context.Context, name string) (bool, error) {
	db, err := i.db(ctx)
	if err != nil {
		return false, err
	}
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	return len(names) > 0, nil
}

// DescribeCollection infers a flat field schema from the first
// documents of the collection. An empty collection yields an empty
// field list, not an error.
func (i *Inspector) DescribeCollection(ctx context.Context, name string) (*CollectionSchema, error) {
	db, err := i.db(ctx)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find().SetLimit(sampleLimit)
	cursor, err := db.Collection(name).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	acc := newFieldAccumulator()
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document from %s: %w", name, err)
		}
		acc.addDocument(doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}

	return &CollectionSchema{Name: name, Fields: acc.fields()}, nil
}

// SampleData returns up to limit pseudo-random documents via $sample.
func (i *Inspector) SampleData(ctx context.Context, name string, limit int) ([]bson.M, error) {
	db, err := i.db(ctx)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: limit}}}},
	}
	cursor, err := db.Collection(name).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", name, err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read sample from %s: %w", name, err)
	}
	return docs, nil
}

// Query runs a JSON-encoded filter against a collection, returning up
// to limit documents and the true total match count. The filter is
// validated before any connection is attempted.
func (i *Inspector) Query(ctx context.Context, name, filter string, limit int) (*QueryResult, error) {
	parsed := map[string]any{}
	if filter != "" {
		if err := json.Unmarshal([]byte(filter), &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}

	db, err := i.db(ctx)
	if err != nil {
		return nil, err
	}
	coll := db.Collection(name)

	findOpts := options.Find().SetLimit(int64(limit))
	cursor, err := coll.Find(ctx, parsed, findOpts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read query results from %s: %w", name, err)
	}

	total, err := coll.CountDocuments(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("count matches in %s: %w", name, err)
	}

	return &QueryResult{Data: docs, Count: len(docs), Total: total, Query: parsed}, nil
}

func databaseFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.Trim(parsed.Path, "/")
}
