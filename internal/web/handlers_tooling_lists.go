package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

type addToolingListRequest struct {
	Title string  `json:"title"`
	Note  *string `json:"note"`
}

type replaceItemsRequest struct {
	Items []domain.BatchEntry `json:"items"`
}

type toolingListResponse struct {
	*domain.ToolingList
	Items []*domain.ToolingListItem `json:"items"`
}

// GET /api/tooling-lists
func (s *Server) listToolingLists(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	lists, err := s.svc.ToolingLists.ListToolingLists(c.Request.Context(), domain.ToolingListFilter{Query: c.Query("q"), Limit: limit})
	if err != nil {
		respondError(c, err)
		return
	}
	if lists == nil {
		lists = []*domain.ToolingList{}
	}
	c.JSON(http.StatusOK, lists)
}

// POST /api/tooling-lists
func (s *Server) addToolingList(c *gin.Context) {
	var req addToolingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	code, err := s.svc.ToolingLists.AddToolingList(c.Request.Context(), req.Title, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"list_code": code})
}

// GET /api/tooling-lists/:code
func (s *Server) getToolingList(c *gin.Context) {
	ctx := c.Request.Context()
	l, err := s.svc.ToolingLists.GetToolingList(ctx, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := s.svc.ToolingLists.ListToolingListItems(ctx, l.ListCode, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []*domain.ToolingListItem{}
	}
	c.JSON(http.StatusOK, toolingListResponse{ToolingList: l, Items: items})
}

// PATCH /api/tooling-lists/:code
func (s *Server) updateToolingList(c *gin.Context) {
	var req domain.ToolingListUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.ToolingLists.UpdateToolingList(c.Request.Context(), c.Param("code"), req); err != nil {
		respondError(c, err)
		return
	}
	s.getToolingList(c)
}

// GET /api/tooling-lists/:code/items
func (s *Server) listToolingListItems(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	items, err := s.svc.ToolingLists.ListToolingListItems(c.Request.Context(), c.Param("code"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []*domain.ToolingListItem{}
	}
	c.JSON(http.StatusOK, items)
}

// POST /api/tooling-lists/:code/items
func (s *Server) addToolingListItem(c *gin.Context) {
	var req domain.ToolingListItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	id, err := s.svc.ToolingLists.AddToolingListItem(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item_id": id})
}

// PUT /api/tooling-lists/:code/items replaces the whole item set.
func (s *Server) replaceToolingListItems(c *gin.Context) {
	var req replaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON: "+err.Error())
		return
	}
	if err := s.svc.ToolingLists.ReplaceToolingListItems(c.Request.Context(), c.Param("code"), req.Items); err != nil {
		respondError(c, err)
		return
	}
	s.listToolingListItems(c)
}

// DELETE /api/tooling-lists/:code/items/:item_id
func (s *Server) removeToolingListItem(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}
	if err := s.svc.ToolingLists.RemoveToolingListItem(c.Request.Context(), c.Param("code"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
