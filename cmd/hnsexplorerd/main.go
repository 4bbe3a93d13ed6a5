// Command hnsexplorerd bootstraps the explorer indexer and query service:
// chain client, secondary store, indexer, query engine, cached aggregates,
// and HTTP surface, wired in construction order (SPEC_FULL.md §4.8),
// grounded on daglabs-btcd/apiserver/main.go and
// kasparov/kasparovserver/main.go's defer-chain bootstrap shape.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dxpool/hns-backend/internal/aggregates"
	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/config"
	"github.com/dxpool/hns-backend/internal/httpapi"
	"github.com/dxpool/hns-backend/internal/indexer"
	"github.com/dxpool/hns-backend/internal/logger"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/panics"
	"github.com/dxpool/hns-backend/internal/query"
	"github.com/dxpool/hns-backend/internal/signal"
	"github.com/dxpool/hns-backend/internal/store/mongostore"
)

const rpcTimeout = 30 * time.Second

var log = logger.Get(logger.SubsystemMain)

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogRotators(
		filepath.Join(cfg.Prefix, "logs", "hnsexplorerd.log"),
		filepath.Join(cfg.Prefix, "logs", "hnsexplorerd_err.log"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing log rotation: %s\n", err)
		os.Exit(1)
	}

	params := model.MainnetParams()
	pools := model.NewPoolTable(nil)

	rpcURL := fmt.Sprintf("%s:%s", cfg.RPCHost, cfg.RPCPort)
	client := chainclient.NewRPCClient(rpcURL, cfg.RPCUser, cfg.RPCPassword, rpcTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoURI := fmt.Sprintf("mongodb://%s:%s", cfg.MongoHost, cfg.MongoPort)
	if cfg.MongoUser != "" {
		mongoURI = fmt.Sprintf("mongodb://%s:%s@%s:%s", cfg.MongoUser, cfg.MongoPassword, cfg.MongoHost, cfg.MongoPort)
	}
	st, err := mongostore.Connect(ctx, mongoURI, cfg.MongoName)
	if err != nil {
		log.Criticalf("error connecting to MongoDB: %s", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Disconnect(context.Background()); err != nil {
			log.Errorf("error disconnecting from MongoDB: %s", err)
		}
	}()
	if err := st.EnsureIndexes(ctx); err != nil {
		log.Criticalf("error ensuring indexes: %s", err)
		os.Exit(1)
	}

	ix := indexer.New(client, st, pools, params)
	spawn := panics.GoroutineWrapperFunc(log)
	spawn(func() {
		for err := range ix.Errors() {
			log.Errorf("indexer error: %s", err)
		}
	})
	if err := ix.Start(ctx); err != nil {
		log.Criticalf("error starting indexer: %s", err)
		os.Exit(1)
	}

	engine := query.New(client, st, pools, params, cfg.Network)

	cache := aggregates.New(client, st, params)
	engine.SetAggregates(cache)
	cache.Start(ctx)

	apiKey := cfg.APIKey
	if cfg.NoAuth {
		apiKey = ""
	}
	server := httpapi.New(engine, httpapi.Options{APIKey: apiKey, CORSEnabled: cfg.CORS})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort),
		Handler: server.Handler(),
	}
	spawn(func() {
		var err error
		if cfg.SSL {
			err = httpServer.ListenAndServeTLS(cfg.SSLCert, cfg.SSLKey)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Criticalf("HTTP server error: %s", err)
			os.Exit(1)
		}
	})

	interrupt := signal.InterruptListener()
	<-interrupt

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("error shutting down HTTP server: %s", err)
	}
}
