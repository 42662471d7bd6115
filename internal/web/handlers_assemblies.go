package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

type addAssemblyRequest struct {
	domain.NewAssembly
	Items []domain.AssemblyItemInput `json:"items"`
}

type assemblyResponse struct {
	*domain.Assembly
	Signature string                 `json:"signature"`
	Items     []*domain.AssemblyItem `json:"items"`
}

// GET /api/assemblies
func (s *Server) listAssemblies(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	list, err := s.svc.Assemblies.ListAssemblies(c.Request.Context(), domain.AssemblyFilter{Query: c.Query("q"), Limit: limit})
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []*domain.Assembly{}
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/assemblies
func (s *Server) addAssembly(c *gin.Context) {
	var req addAssemblyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	code, err := s.svc.Assemblies.ComposeAssembly(c.Request.Context(), req.NewAssembly, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assembly_code": code})
}

// GET /api/assemblies/:code
func (s *Server) getAssembly(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := s.svc.Assemblies.GetAssembly(ctx, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := s.svc.Assemblies.ListAssemblyItems(ctx, a.AssemblyCode, domain.AllItems)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []*domain.AssemblyItem{}
	}
	c.JSON(http.StatusOK, assemblyResponse{Assembly: a, Signature: domain.SignatureOf(items), Items: items})
}

// PATCH /api/assemblies/:code
func (s *Server) updateAssembly(c *gin.Context) {
	var req domain.AssemblyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.Assemblies.UpdateAssembly(c.Request.Context(), c.Param("code"), req); err != nil {
		respondError(c, err)
		return
	}
	s.getAssembly(c)
}

// GET /api/assemblies/:code/items
func (s *Server) listAssemblyItems(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	items, err := s.svc.Assemblies.ListAssemblyItems(c.Request.Context(), c.Param("code"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []*domain.AssemblyItem{}
	}
	c.JSON(http.StatusOK, items)
}

// POST /api/assemblies/:code/items
func (s *Server) addAssemblyItem(c *gin.Context) {
	var req domain.AssemblyItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	id, err := s.svc.Assemblies.AddAssemblyItem(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item_id": id})
}

// DELETE /api/assemblies/:code/items/:item_id
func (s *Server) removeAssemblyItem(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}
	if err := s.svc.Assemblies.RemoveAssemblyItem(c.Request.Context(), c.Param("code"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/assemblies/:code/signature
func (s *Server) getSignature(c *gin.Context) {
	sig, err := s.svc.Assemblies.Signature(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig})
}

// POST /api/assemblies/:code/signature renames the assembly to its signature.
func (s *Server) applySignature(c *gin.Context) {
	sig, err := s.svc.Assemblies.ApplySignature(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig})
}
