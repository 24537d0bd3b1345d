package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

type BoardCommentHandler struct {
	commentService *services.BoardCommentService
}

func NewBoardCommentHandler(db *gorm.DB) *BoardCommentHandler {
	return &BoardCommentHandler{
		commentService: services.NewBoardCommentService(db),
	}
}

// List returns a board's comments, top-level first with replies nested
// GET /api/boards/:id/comments
func (h *BoardCommentHandler) List(c *gin.Context) {
	boardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	comments, err := h.commentService.List(uint(boardID))
	if err != nil {
		response.NotFound(c, "board not found")
		return
	}

	response.Success(c, comments)
}

// Create posts a comment. Mentions are extracted best-effort; a failed
// mention never fails the comment.
// POST /api/boards/:id/comments
func (h *BoardCommentHandler) Create(c *gin.Context) {
	boardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	comment, err := h.commentService.Create(uint(boardID), userID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, comment)
}

// Delete removes a comment. Authors delete their own; admins any.
// DELETE /api/boards/:id/comments/:comment_id
func (h *BoardCommentHandler) Delete(c *gin.Context) {
	boardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.commentService.Delete(uint(boardID), uint(commentID), userID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "comment deleted successfully"})
}
