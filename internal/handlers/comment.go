package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
)

type CommentHandler struct {
	content *services.ContentService
}

func NewCommentHandler(content *services.ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

type createCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

// List returns the thread, or the flat list with ?flat=true.
func (h *CommentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.CurrentSession(c)
	articleID := c.Param("id")

	if c.Query("flat") == "true" {
		comments, err := h.content.ListComments(ctx, viewer, articleID)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})
		return
	}

	thread, err := h.content.Thread(ctx, viewer, articleID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": thread})
}

// Create 发表评论或回复
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	comment, err := h.content.CreateComment(c.Request.Context(), middleware.CurrentSession(c), services.CommentInput{
		ArticleID: c.Param("id"),
		Content:   req.Content,
		ParentID:  req.ParentID,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ToggleLike 评论点赞/取消
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	comment, err := h.content.ToggleCommentLike(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
