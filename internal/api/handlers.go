// Package api wires up the Gin HTTP router and implements the Request
// Adapter (C7): it parses bodies, dispatches to the store Facade, and
// suppresses replication fan-out when the inbound request is itself a
// replica delivery.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kvstore/internal/replication"
	"kvstore/internal/store"
)

// Handler holds the dependencies injected from main.
type Handler struct {
	store      *store.Facade
	replicator *replication.Replicator
}

// NewHandler creates a Handler.
func NewHandler(s *store.Facade, r *replication.Replicator) *Handler {
	return &Handler{store: s, replicator: r}
}

// Register mounts the request-logging and panic-recovery middleware,
// then all five endpoints, on r.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(requestLogger(), recoverPanic())

	r.POST("/put", h.Put)
	r.GET("/read/:key", h.Read)
	r.GET("/readrange", h.ReadRange)
	r.POST("/batchput", h.BatchPut)
	r.POST("/delete", h.Delete)
}

// contextKey and contextReplicaDelivery let handlers pass the key they
// served (and whether the request was itself a replica delivery) to the
// logging middleware without re-parsing the body there.
const (
	contextKey             = "kv.key"
	contextReplicaDelivery = "kv.replica_delivery"
)

// requestLogger logs every request with the key it served (when the
// handler recorded one) and whether replication fan-out was suppressed
// because the request was itself a replica delivery.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		key, _ := c.Get(contextKey)
		replicaDelivery, _ := c.Get(contextReplicaDelivery)
		log.Printf("[%s] %s key=%v replica_delivery=%v | %d | %s",
			c.Request.Method,
			c.Request.URL.Path,
			key,
			replicaDelivery,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// recoverPanic recovers a panic from a handler, logging which endpoint
// and key (if known at the time of the panic) triggered it.
func recoverPanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				key, _ := c.Get(contextKey)
				log.Printf("PANIC recovered serving %s (key=%v): %v", c.Request.URL.Path, key, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// isReplicaDelivery reports whether this request arrived as a replica
// delivery — the loop-break for fan-out. It also records the flag on the
// context so requestLogger can report it.
func isReplicaDelivery(c *gin.Context) bool {
	replica := c.Query("replication") == "true"
	c.Set(contextReplicaDelivery, replica)
	return replica
}

// Put handles POST /put.
func (h *Handler) Put(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	var body keyValue
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	c.Set(contextKey, body.Key)

	if err := h.store.Put(body.Key, body.Value); err != nil {
		writeStoreError(c, err)
		return
	}

	if !isReplicaDelivery(c) {
		h.replicator.Fanout("put", raw)
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// Read handles GET /read/:key.
func (h *Handler) Read(c *gin.Context) {
	key := c.Param("key")
	c.Set(contextKey, key)

	value, err := h.store.Read(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"value": store.NotFoundValue})
			return
		}
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": value})
}

// ReadRange handles GET /readrange?start_key=...&end_key=....
func (h *Handler) ReadRange(c *gin.Context) {
	startKey := c.Query("start_key")
	endKey := c.Query("end_key")
	c.Set(contextKey, startKey+".."+endKey)

	result, err := h.store.ReadRange(startKey, endKey)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BatchPut handles POST /batchput.
func (h *Handler) BatchPut(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	var items []keyValue
	if err := json.Unmarshal(raw, &items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	keys := make([]string, len(items))
	values := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key
		values[i] = item.Value
	}
	c.Set(contextKey, keys)

	if err := h.store.BatchPut(keys, values); err != nil {
		writeStoreError(c, err)
		return
	}

	if !isReplicaDelivery(c) {
		h.replicator.Fanout("batchput", raw)
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

// Delete handles POST /delete.
func (h *Handler) Delete(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	var body struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	c.Set(contextKey, body.Key)

	if err := h.store.Delete(body.Key); err != nil {
		writeStoreError(c, err)
		return
	}

	if !isReplicaDelivery(c) {
		h.replicator.Fanout("delete", raw)
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// writeStoreError maps a Facade error onto the HTTP response per the
// error taxonomy in spec.md §7.
func writeStoreError(c *gin.Context, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}
	var ioerr *store.IoError
	if errors.As(err, &ioerr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ioerr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
