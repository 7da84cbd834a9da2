package docdb

import (
	"context"
	"encoding/gob"
	"log/slog"
	"strings"
	"time"

	"userstore/config"
	"userstore/internal/domain/lifecycle"
	"userstore/internal/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"gocloud.dev/docstore"
	_ "gocloud.dev/docstore/gcpfirestore" // registers firestore:// for docstore.OpenCollection
	"gocloud.dev/docstore/memdocstore"
	"gocloud.dev/docstore/mongodocstore"
)

const defaultMongoConnectTimeout = 10 * time.Second

// memdocstore gob-encodes documents as map[string]any when it saves to a file, so every
// dynamic value type a document can hold must be registered.
func init() {
	gob.Register(time.Time{})
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the document collection selected by the docstore config and closes it on stop.
func New(params Params) (*docstore.Collection, error) {
	cfg := params.Config.Docstore
	if cfg == nil {
		return nil, errors.New("docstore config is missing")
	}

	coll, onStart, onStop, err := open(cfg)
	if err != nil {
		return nil, err
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := onStart(ctx); err != nil {
				return err
			}
			params.Logger.InfoContext(ctx, "Document store opened", slog.String("backend", backendName(cfg)))

			return nil
		},
		OnStop: func(ctx context.Context) error {
			closeErr := coll.Close()
			if err := onStop(ctx); err != nil {
				return err
			}

			return errors.Wrap(closeErr, "failed to close document collection")
		},
	})

	return coll, nil
}

type hookFunc func(ctx context.Context) error

func noopHook(context.Context) error { return nil }

func open(cfg *config.DocstoreConfig) (*docstore.Collection, hookFunc, hookFunc, error) {
	switch {
	case cfg.Mongo.URI != "":
		return openMongo(cfg)
	case cfg.Filename != "" && strings.HasPrefix(cfg.URL, "mem://"):
		coll, err := memdocstore.OpenCollection(cfg.KeyField, &memdocstore.Options{Filename: cfg.Filename})
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "failed to open memdocstore collection")
		}

		return coll, noopHook, noopHook, nil
	default:
		coll, err := docstore.OpenCollection(context.Background(), cfg.URL)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "failed to open collection %s", cfg.URL)
		}

		return coll, noopHook, noopHook, nil
	}
}

func openMongo(cfg *config.DocstoreConfig) (*docstore.Collection, hookFunc, hookFunc, error) {
	timeout := cfg.Mongo.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultMongoConnectTimeout
	}

	client, err := mongo.NewClient(options.Client().ApplyURI(cfg.Mongo.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to create MongoDB client")
	}

	mcoll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	coll, err := mongodocstore.OpenCollection(mcoll, cfg.KeyField, nil)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to open MongoDB collection")
	}

	onStart := func(ctx context.Context) error {
		if err := client.Connect(ctx); err != nil {
			return errors.Wrap(err, "failed to connect to MongoDB")
		}

		return errors.Wrap(client.Ping(ctx, readpref.Primary()), "failed to ping MongoDB")
	}
	onStop := func(ctx context.Context) error {
		return errors.Wrap(client.Disconnect(ctx), "failed to disconnect from MongoDB")
	}

	return coll, onStart, onStop, nil
}

func backendName(cfg *config.DocstoreConfig) string {
	if cfg.Mongo.URI != "" {
		return "mongo"
	}
	if i := strings.Index(cfg.URL, "://"); i > 0 {
		return cfg.URL[:i]
	}

	return cfg.URL
}
