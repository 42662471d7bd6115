package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

type updatePartRequest struct {
	Fields domain.PartPatch `json:"fields"`
	Reason *string          `json:"reason"`
}

type archivePartRequest struct {
	Reason string `json:"reason"`
}

// GET /api/parts
func (s *Server) listParts(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	parts, err := s.svc.Parts.ListParts(c.Request.Context(), domain.PartFilter{
		LayerCode:    c.Query("layer_code"),
		CategoryCode: c.Query("category_code"),
		Status:       c.Query("status"),
		Query:        c.Query("q"),
		Limit:        limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if parts == nil {
		parts = []*domain.Part{}
	}
	c.JSON(http.StatusOK, parts)
}

// POST /api/parts
func (s *Server) addPart(c *gin.Context) {
	var req domain.NewPart
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	code, err := s.svc.Parts.AddPart(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset_code": code})
}

// GET /api/parts/:code
func (s *Server) getPart(c *gin.Context) {
	part, err := s.svc.Parts.GetPart(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

// PATCH /api/parts/:code
func (s *Server) updatePart(c *gin.Context) {
	var req updatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.Parts.UpdatePart(c.Request.Context(), c.Param("code"), req.Fields, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	s.getPart(c)
}

// POST /api/parts/:code/archive
func (s *Server) archivePart(c *gin.Context) {
	var req archivePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.Parts.ArchivePart(c.Request.Context(), c.Param("code"), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	s.getPart(c)
}

// POST /api/parts/:code/restore
func (s *Server) restorePart(c *gin.Context) {
	if err := s.svc.Parts.RestorePart(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	s.getPart(c)
}
