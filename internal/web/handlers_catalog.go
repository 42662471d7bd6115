package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zjrosen/toolasset/internal/catalog"
	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

func queryLimit(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func itemIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "item_id must be a positive integer")
		return 0, false
	}
	return id, true
}

// GET /api/layers
func (s *Server) listLayers(c *gin.Context) {
	c.JSON(http.StatusOK, s.dict.Layers())
}

// GET /api/categories?layer=INSERT
func (s *Server) listCategories(c *gin.Context) {
	layer := strings.TrimSpace(c.Query("layer"))
	if layer == "" {
		c.JSON(http.StatusOK, s.dict.AllCategories())
		return
	}
	if !s.dict.ValidateLayer(layer) {
		respondError(c, domain.Invalid("layer", "unknown layer %q", layer))
		return
	}
	categories := s.dict.Categories(layer)
	if categories == nil {
		categories = []catalog.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

// GET /api/labels
func (s *Server) getLabels(c *gin.Context) {
	labels, err := s.labels.Get(c.Request.Context(), labelsCacheKey, struct{}{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

// GET /api/{parts,assemblies,tooling-lists}/:code/history
func (s *Server) history(targetType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := queryLimit(c)
		if !ok {
			return
		}
		logs, err := s.svc.Audit.History(c.Request.Context(), targetType, c.Param("code"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		if logs == nil {
			logs = []*domain.OperationLog{}
		}
		c.JSON(http.StatusOK, logs)
	}
}
