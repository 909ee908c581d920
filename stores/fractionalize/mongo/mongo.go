// Package mongo is the MongoDB record store, reading the collection written
// by the fractionalize ingester.
package mongo

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	backend         = "mongo"
	defaultDatabase = "fractionalize"
	connectTimeout  = 10 * time.Second
)

// Store fields are safe for concurrent use; the driver pools connections.
type Store struct {
	logger ulogger.Logger
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
}

// New connects to the deployment in storeURL. The path names the database and
// the collection query parameter overrides the default collection.
func New(ctx context.Context, logger ulogger.Logger, storeURL *url.URL) (*Store, error) {
	logger = logger.New("frmongo")

	uri, database, collection := parseURL(storeURL)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to connect to mongodb", err)
	}

	if err = client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.NewStorageUnavailableError("failed to ping mongodb", err)
	}

	logger.Infof("[RecordStore] connected to mongodb %s, database %s, collection %s", storeURL.Host, database, collection)

	db := client.Database(database)

	return &Store{
		logger: logger,
		client: client,
		db:     db,
		coll:   db.Collection(collection),
	}, nil
}

// parseURL strips the store-level query parameters before the URL is handed
// to the driver.
func parseURL(storeURL *url.URL) (uri, database, collection string) {
	u := *storeURL
	q := u.Query()

	collection = q.Get("collection")
	if collection == "" {
		collection = fractionalize.DefaultCollection
	}

	q.Del("collection")
	q.Del("logging")
	u.RawQuery = q.Encode()

	database = strings.TrimPrefix(u.Path, "/")
	if database == "" {
		database = defaultDatabase
	}

	return u.String(), database, collection
}

func (s *Store) Health(ctx context.Context, _ bool) (int, string, error) {
	if err := s.Ping(ctx); err != nil {
		return http.StatusServiceUnavailable, "MongoDB Store unavailable", err
	}

	return http.StatusOK, "MongoDB Store available", nil
}

func (s *Store) Ping(ctx context.Context) (err error) {
	defer fractionalize.Observe(backend, "Ping", time.Now(), &err)

	if err = s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.NewStorageUnavailableError("[mongo] ping failed", err)
	}

	return nil
}

func (s *Store) Count(ctx context.Context, filter *fractionalize.Filter) (_ uint64, err error) {
	defer fractionalize.Observe(backend, "Count", time.Now(), &err)

	n, err := s.coll.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, errors.NewStorageUnavailableError("[mongo] count failed", err)
	}

	if n < 0 {
		return 0, nil
	}

	return uint64(n), nil
}

func (s *Store) Find(ctx context.Context, filter *fractionalize.Filter, opts fractionalize.FindOptions) (_ []*model.UTXORef, err error) {
	defer fractionalize.Observe(backend, "Find", time.Now(), &err)

	// a zero limit means "no limit" to mongo
	if opts.Limit <= 0 {
		return []*model.UTXORef{}, nil
	}

	dir := -1
	if opts.Sort == fractionalize.SortAscending {
		dir = 1
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: dir}, {Key: "txid", Value: dir}, {Key: "outputIndex", Value: dir}}).
		SetSkip(int64(opts.Skip)).
		SetLimit(int64(opts.Limit)).
		SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "txid", Value: 1}, {Key: "outputIndex", Value: 1}})

	cursor, err := s.coll.Find(ctx, buildFilter(filter), findOpts)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[mongo] find failed", err)
	}

	refs := make([]*model.UTXORef, 0, opts.Limit)
	if err = cursor.All(ctx, &refs); err != nil {
		return nil, errors.NewStorageUnavailableError("[mongo] find decode failed", err)
	}

	return refs, nil
}

func buildFilter(filter *fractionalize.Filter) bson.M {
	doc := bson.M{}
	if filter == nil {
		return doc
	}

	if filter.TxID != "" {
		doc["txid"] = filter.TxID
	}

	createdAt := bson.M{}

	if filter.Since != nil {
		createdAt["$gte"] = *filter.Since
	}

	if filter.Until != nil {
		createdAt["$lte"] = *filter.Until
	}

	if len(createdAt) > 0 {
		doc["createdAt"] = createdAt
	}

	return doc
}

func (s *Store) Metadata(ctx context.Context) (_ *fractionalize.Metadata, err error) {
	defer fractionalize.Observe(backend, "Metadata", time.Now(), &err)

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[mongo] list collections failed", err)
	}

	cursor, err := s.coll.Indexes().List(ctx)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[mongo] list indexes failed", err)
	}

	var indexes []bson.M
	if err = cursor.All(ctx, &indexes); err != nil {
		return nil, errors.NewStorageUnavailableError("[mongo] decode indexes failed", err)
	}

	md := &fractionalize.Metadata{
		Collections: len(names),
		Indexes:     len(indexes),
	}

	// dbStats is not available on every deployment
	var stats bson.M
	if statsErr := s.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&stats); statsErr != nil {
		s.logger.Warnf("[RecordStore][mongo] could not retrieve database storage stats: %v", statsErr)
	} else if size, ok := toInt64(stats["storageSize"]); ok {
		md.StorageSize = &size
	} else {
		s.logger.Warnf("[RecordStore][mongo] dbStats storageSize has unexpected type %T", stats["storageSize"])
	}

	return md, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
