package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"inkwell/internal/config"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"
)

// Deps are the services the routes are served from.
type Deps struct {
	Content  *services.ContentService
	Auth     *services.AuthService
	Importer *services.Importer
	Log      zerolog.Logger
}

// New builds the engine: recovery, compression, cookie sessions, request
// logging, then routes.
func New(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.Session.CookieName, store))
	r.Use(middleware.LoadUser(deps.Auth, deps.Log))
	r.Use(middleware.Logging(deps.Log))

	RegisterRoutes(r, cfg, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	articleHandler := handlers.NewArticleHandler(deps.Content)
	commentHandler := handlers.NewCommentHandler(deps.Content)
	seoHandler := handlers.NewSEOHandler(deps.Content, cfg.Server.SiteURL)
	importHandler := handlers.NewImportHandler(deps.Importer)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "inkwell",
		})
	})
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/categories", articleHandler.Categories)      // 分类目录
	api.GET("/articles", articleHandler.List)              // 文章列表，支持分类/搜索/排序
	api.GET("/articles/:id", articleHandler.Detail)        // 文章详情
	api.GET("/articles/:id/comments", commentHandler.List) // 评论树

	api.POST("/auth/login", authHandler.Login)   // 登录
	api.POST("/auth/signup", authHandler.Signup) // 注册
	api.POST("/auth/logout", authHandler.Logout) // 退出登录
	api.GET("/auth/me", authHandler.Me)          // 当前用户

	// 受保护路由 (Protected Routes)
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/articles", articleHandler.Create)                      // 发布文章
		authorized.POST("/articles/:id/like", articleHandler.ToggleLike)         // 点赞/取消
		authorized.POST("/articles/:id/bookmark", articleHandler.ToggleBookmark) // 收藏/取消
		authorized.POST("/articles/:id/comments", commentHandler.Create)         // 发表评论
		authorized.POST("/comments/:id/like", commentHandler.ToggleLike)         // 评论点赞
		authorized.POST("/import", importHandler.Import)                         // 导入 RSS
	}
}
