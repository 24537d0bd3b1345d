package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(db *gorm.DB) *BoardHandler {
	return &BoardHandler{
		boardService: services.NewBoardService(db),
	}
}

// List returns the current user's boards
// GET /api/boards
func (h *BoardHandler) List(c *gin.Context) {
	var req services.BoardListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	resp, err := h.boardService.List(userID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetByID returns a board with its elements ordered by z then id
// GET /api/boards/:id
func (h *BoardHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	board, err := h.boardService.Get(uint(id))
	if err != nil {
		response.NotFound(c, "board not found")
		return
	}

	response.Success(c, board)
}

// Create creates a new board
// POST /api/boards
func (h *BoardHandler) Create(c *gin.Context) {
	var req services.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	board, err := h.boardService.Create(userID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, board)
}

// Update updates board title or background
// PUT /api/boards/:id
func (h *BoardHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	var req services.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	board, err := h.boardService.Update(userID, uint(id), &req)
	if err != nil {
		response.NotFound(c, "board not found")
		return
	}

	response.Success(c, board)
}

// Delete deletes a board and everything on it
// DELETE /api/boards/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.boardService.Delete(userID, uint(id)); err != nil {
		response.NotFound(c, "board not found")
		return
	}

	response.Success(c, gin.H{"message": "board deleted successfully"})
}

// boardElementIDs parses the :id and :element_id route params.
func boardElementIDs(c *gin.Context) (uint, uint, bool) {
	boardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return 0, 0, false
	}
	elementID, err := strconv.ParseUint(c.Param("element_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid element id")
		return 0, 0, false
	}
	return uint(boardID), uint(elementID), true
}

// CreateElement adds an element to a board
// POST /api/boards/:id/elements
func (h *BoardHandler) CreateElement(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	var req services.CreateElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	element, err := h.boardService.CreateElement(uint(id), &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, element)
}

// UpdateElement applies a partial transform: position, size, content
// and metadata in one call
// PUT /api/boards/:id/elements/:element_id
func (h *BoardHandler) UpdateElement(c *gin.Context) {
	boardID, elementID, ok := boardElementIDs(c)
	if !ok {
		return
	}

	var req services.UpdateElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	element, err := h.boardService.UpdateElement(boardID, elementID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, element)
}

// DeleteElement removes an element. Children of a deleted column are
// detached, not deleted.
// DELETE /api/boards/:id/elements/:element_id
func (h *BoardHandler) DeleteElement(c *gin.Context) {
	boardID, elementID, ok := boardElementIDs(c)
	if !ok {
		return
	}

	if err := h.boardService.DeleteElement(boardID, elementID); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "element deleted successfully"})
}

type zOrderRequest struct {
	Op string `json:"op" binding:"required,oneof=front back forward backward"`
}

// SetZOrder moves an element within the stacking order
// POST /api/boards/:id/elements/:element_id/z-order
func (h *BoardHandler) SetZOrder(c *gin.Context) {
	boardID, elementID, ok := boardElementIDs(c)
	if !ok {
		return
	}

	var req zOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	element, err := h.boardService.SetZOrder(boardID, elementID, req.Op)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, element)
}

// Reparent drops an element into a column at the given index
// POST /api/boards/:id/elements/:element_id/reparent
func (h *BoardHandler) Reparent(c *gin.Context) {
	boardID, elementID, ok := boardElementIDs(c)
	if !ok {
		return
	}

	var req services.ReparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	element, err := h.boardService.Reparent(boardID, elementID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, element)
}

// Detach removes an element from its parent column
// POST /api/boards/:id/elements/:element_id/detach
func (h *BoardHandler) Detach(c *gin.Context) {
	boardID, elementID, ok := boardElementIDs(c)
	if !ok {
		return
	}

	element, err := h.boardService.Detach(boardID, elementID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, element)
}
