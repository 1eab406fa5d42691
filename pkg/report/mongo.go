package report

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/analysis"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
)

const (
	mongoDatabase   = "osscost"
	mongoCollection = "reports"
	connectTimeout  = 10 * time.Second
)

// MongoStore keeps a history of analysis runs in a MongoDB collection,
// one document per run keyed by run id.
type MongoStore struct {
	client *mongo.Client
}

// NewMongoStore connects to the given MongoDB URI and verifies the
// connection with a ping.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "cannot connect to report store")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "report store is unreachable")
	}
	return &MongoStore{client: client}, nil
}

// Save inserts one analysis run.
func (s *MongoStore) Save(ctx context.Context, result *analysis.Result) error {
	coll := s.client.Database(mongoDatabase).Collection(mongoCollection)
	if _, err := coll.InsertOne(ctx, result); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "cannot save report %s", result.RunID)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
