// cmd/server is the main entrypoint for a KV store node.
//
// Configuration is entirely via environment variables so the same binary
// image runs unchanged across environments — see internal/config.
//
// Example:
//
//	STORAGE_FILE=/data/node1.db WAL_FILE=/data/node1.wal \
//	REPLICAS=localhost:8081,localhost:8082 LISTEN_ADDR=:8080 ./server
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"kvstore/internal/api"
	"kvstore/internal/cache"
	"kvstore/internal/config"
	"kvstore/internal/engine"
	"kvstore/internal/replication"
	"kvstore/internal/store"
	"kvstore/internal/wal"
)

func main() {
	cfg := config.Load()

	e, err := engine.Open(cfg.StorageFile)
	if err != nil {
		log.Fatalf("open engine: %v", err)
	}

	w, err := wal.Open(cfg.WalFile)
	if err != nil {
		log.Fatalf("open wal: %v", err)
	}

	applied, err := store.Recover(e, w)
	if err != nil {
		log.Fatalf("recovery: %v", err)
	}
	if applied > 0 {
		log.Printf("recovery: replayed %d WAL record(s)", applied)
	}

	c := cache.New(cfg.CacheSize)
	facade := store.New(e, c, w)
	defer facade.Close()

	replicator := replication.New(cfg.Replicas)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	handler := api.NewHandler(facade, replicator)
	handler.Register(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"peers":  len(replicator.Peers()),
		})
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (peers=%v)", cfg.ListenAddr, replicator.Peers())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
