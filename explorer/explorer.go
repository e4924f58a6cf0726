package explorer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/sourcequery/sourcequery/entity"
	"github.com/sourcequery/sourcequery/erd"
	"github.com/sourcequery/sourcequery/metrics"
	"github.com/sourcequery/sourcequery/mongostore"
	"github.com/sourcequery/sourcequery/swagger"
)

// mongoSampleSize is the number of sample documents fetched alongside
// a collection schema.
const mongoSampleSize = 2

// Options configures an Explorer. A nil client disables that source.
type Options struct {
	ERD     *erd.Client
	Swagger *swagger.Client
	Store   *mongostore.Inspector
	Logger  *zap.Logger
}

// Explorer aggregates entity lookups across the three sources.
type Explorer struct {
	erd     *erd.Client
	swagger *swagger.Client
	store   *mongostore.Inspector
	log     *zap.Logger
}

// New creates an Explorer from opts.
func New(opts Options) *Explorer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Explorer{erd: opts.ERD, swagger: opts.Swagger, store: opts.Store, log: log}
}

// ExploreOptions are the per-call knobs.
type ExploreOptions struct {
	// Limit is reserved for query-style lookups; sample size is fixed.
	Limit int
}

// Result is the combined outcome of one explore call.
type Result struct {
	Query      string  `json:"query"`
	EntityName string  `json:"entityName"`
	Sources    Sources `json:"sources"`
}

// Sources holds one slot per source. Each slot is either the
// narrowed payload for that source or a Message.
type Sources struct {
	ERD     any `json:"erd"`
	Swagger any `json:"swagger"`
	MongoDB any `json:"mongodb"`
}

// Message is the degraded form of a source slot: not configured, not
// found, or failed.
type Message struct {
	Message string `json:"message"`
}

// MongoResult is the MongoDB slot on success: the inferred schema
// plus a couple of sample documents.
type MongoResult struct {
	Schema *mongostore.CollectionSchema `json:"schema"`
	Sample []bson.M                     `json:"sample"`
}

// Explore resolves an entity name from query and gathers the narrowed
// per-source results. Sources are looked up concurrently; slots are
// composed in a fixed order. The only error returned is
// entity.ErrUnresolved.
func (e *Explorer) Explore(ctx context.Context, query string, opts ExploreOptions) (*Result, error) {
	name, err := entity.Resolve(query)
	if err != nil {
		return nil, err
	}

	e.log.Debug("exploring entity",
		zap.String("invocation_id", uuid.NewString()),
		zap.String("entity", name),
		zap.String("query", query))

	result := &Result{Query: query, EntityName: name}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		result.Sources.ERD = e.erdSource(ctx, name)
	}()
	go func() {
		defer wg.Done()
		result.Sources.Swagger = e.swaggerSource(ctx, name)
	}()
	go func() {
		defer wg.Done()
		result.Sources.MongoDB = e.mongoSource(ctx, name)
	}()
	wg.Wait()

	return result, nil
}

func (e *Explorer) erdSource(ctx context.Context, name string) any {
	if !e.erd.Configured() {
		return Message{Message: "ERD source not configured (set ERD_API_URL)"}
	}

	doc, err := e.erd.Fetch(ctx)
	if err != nil {
		return e.degrade("erd", fmt.Sprintf("ERD fetch failed: %v", err))
	}

	table := doc.FindTable(name)
	if table == nil {
		return Message{Message: fmt.Sprintf("no table matching %q in the ERD", name)}
	}
	return table
}

func (e *Explorer) swaggerSource(ctx context.Context, name string) any {
	if !e.swagger.Configured() {
		return Message{Message: "Swagger source not configured (set SWAGGER_API_URL)"}
	}

	doc, err := e.swagger.Fetch(ctx)
	if err != nil {
		return e.degrade("swagger", fmt.Sprintf("Swagger fetch failed: %v", err))
	}

	narrowed, ok := doc.Narrow(name)
	if !ok {
		return Message{Message: fmt.Sprintf("no paths or schemas matching %q in the API documentation", name)}
	}
	return narrowed
}

// mongoSource treats the entity name directly as a collection name.
// A missing collection is a not-found message for this slot, never a
// failure of the whole call.
func (e *Explorer) mongoSource(ctx context.Context, name string) any {
	if !e.store.Configured() {
		return Message{Message: "MongoDB source not configured (set MONGODB_URI)"}
	}

	exists, err := e.store.CollectionExists(ctx, name)
	if err != nil {
		return e.degrade("mongodb", fmt.Sprintf("MongoDB lookup failed: %v", err))
	}
	if !exists {
		return Message{Message: fmt.Sprintf("no collection named %q", name)}
	}

	schema, err := e.store.DescribeCollection(ctx, name)
	if err != nil {
		return e.degrade("mongodb", fmt.Sprintf("MongoDB schema inference failed: %v", err))
	}

	sample, err := e.store.SampleData(ctx, name, mongoSampleSize)
	if err != nil {
		e.log.Warn("sample fetch failed", zap.String("collection", name), zap.Error(err))
		sample = nil
	}

	return MongoResult{Schema: schema, Sample: sample}
}

func (e *Explorer) degrade(source, message string) Message {
	metrics.SourceDegradations.WithLabelValues(source).Inc()
	e.log.Warn("source degraded", zap.String("source", source), zap.String("message", message))
	return Message{Message: message}
}
