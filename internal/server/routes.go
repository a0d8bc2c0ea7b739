package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zulandar/evodex/internal/dex"
	"github.com/zulandar/evodex/internal/ingest"
	"github.com/zulandar/evodex/internal/logger"
)

// registerRoutes sets up all routes on the gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	svc := opts.Service

	records := router.Group("/records")
	records.GET("", handleList(svc, opts.Log))
	records.GET("/generation/:generation", handleGeneration(svc, opts.Log))
	records.GET("/:id", handleDetail(svc, opts.Log))
	records.GET("/:id/evolutions", handleSteps(svc, opts.Log))
	records.POST("/search", handleSearch(svc, opts.Log))

	router.GET("/healthz", handleHealth(svc, opts.Ingestion))
	router.GET("/ingest/events", handleIngestEvents(svc, opts.Ingestion, defaultPollInterval))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
}

func handleList(svc *dex.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.FindAll(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func handleGeneration(svc *dex.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		gen, ok := intParam(c, "generation")
		if !ok {
			return
		}
		list, err := svc.FindByGeneration(c.Request.Context(), gen)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func handleDetail(svc *dex.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		d, err := svc.FindOne(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func handleSteps(svc *dex.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		steps, err := svc.Steps(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, steps)
	}
}

func handleSearch(svc *dex.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q dex.SearchQuery
		if err := c.ShouldBindJSON(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search body: " + err.Error()})
			return
		}
		list, err := svc.Search(c.Request.Context(), q)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func handleHealth(svc *dex.Service, ing Ingestion) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "ingestion": ingest.StateNotStarted}
		if ing != nil {
			body["ingestion"] = ing.State()
			if _, err := ing.LastResult(); err != nil {
				body["lastError"] = err.Error()
			}
		}
		n, err := svc.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		body["records"] = n
		c.JSON(http.StatusOK, body)
	}
}

// intParam parses a path parameter, answering 400 itself when it is not an
// integer.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

func fail(c *gin.Context, log *logger.Logger, err error) {
	if errors.Is(err, dex.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	log.Error("request failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
