package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

type ArticleHandler struct {
	content *services.ContentService
}

func NewArticleHandler(content *services.ContentService) *ArticleHandler {
	return &ArticleHandler{content: content}
}

// Categories 分类目录
func (h *ArticleHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"all":        models.CategoryAll,
		"categories": models.Categories,
	})
}

// List 文章列表, ?category=&q=&sort=latest|top&since=
func (h *ArticleHandler) List(c *gin.Context) {
	since, err := services.ParseSince(c.Query("since"))
	if err != nil {
		RespondError(c, err)
		return
	}
	q := services.FeedQuery{
		Category: c.DefaultQuery("category", models.CategoryAll),
		Query:    c.Query("q"),
		Sort:     services.ParseSort(c.Query("sort")),
		Since:    since,
	}
	articles, err := h.content.Feed(c.Request.Context(), middleware.CurrentSession(c), q)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": len(articles)})
}

// Detail 文章详情，同时计一次浏览
func (h *ArticleHandler) Detail(c *gin.Context) {
	a, err := h.content.GetArticle(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Create 发布文章
func (h *ArticleHandler) Create(c *gin.Context) {
	var draft services.ArticleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.content.CreateArticle(c.Request.Context(), middleware.CurrentSession(c), draft)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ToggleLike 点赞/取消点赞
func (h *ArticleHandler) ToggleLike(c *gin.Context) {
	a, err := h.content.ToggleLike(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ToggleBookmark 收藏/取消收藏
func (h *ArticleHandler) ToggleBookmark(c *gin.Context) {
	a, err := h.content.ToggleBookmark(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
