package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"virs-challenge/backend/config"
	"virs-challenge/backend/internal/api/handler"
	"virs-challenge/backend/internal/api/middleware"
	"virs-challenge/backend/pkg/jwt"
	"virs-challenge/backend/pkg/redis"
)

// Pinger 健康检查依赖（数据库）
type Pinger interface {
	Ping(ctx context.Context) error
}

// 每个窗口内允许的请求数
const (
	limitRead    = 100
	limitWrite   = 10
	limitEnd     = 5
	limitStreak  = 30
	limitReply   = 20
	limitLike    = 50
	limitExport  = 10
	healthTimeout = 2 * time.Second
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 或 rate_limit.enabled=false 时限流中间件直接放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db Pinger, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	limiter := rdb
	if !cfg.RateLimit.Enabled {
		limiter = nil
	}
	window := cfg.RateLimit.Window
	if window <= 0 {
		window = time.Minute
	}
	limit := func(n int) gin.HandlerFunc {
		return middleware.RateLimit(limiter, n, window, logger)
	}

	api := r.Group("/api")

	// ── 健康检查 ──
	api.GET("/health", healthHandler(db, rdb))

	// ── 公开路由（可选认证，管理员可见访问码）──
	api.GET("/semesters/active", middleware.OptionalJWTAuth(jwtMgr), limit(limitRead), h.Semester.GetActiveSemester)

	// ── 需要认证的路由 ──
	authorized := api.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr))
	admin := middleware.RoleAuth(jwt.RoleAdmin)
	{
		// 学期模块
		semesters := authorized.Group("/semesters")
		{
			semesters.GET("", admin, limit(limitRead), h.Semester.ListSemesters)
			semesters.GET("/export", admin, limit(limitExport), h.Export.ExportSemesters)
			semesters.GET("/:id", limit(limitRead), h.Semester.GetSemester)
			semesters.GET("/:id/calendar", limit(limitRead), h.Export.SemesterCalendar)
			semesters.POST("", admin, limit(limitWrite), h.Semester.CreateSemester)
			semesters.PATCH("/:id", admin, limit(limitWrite), h.Semester.UpdateSemester)
			semesters.POST("/:id/end", admin, limit(limitEnd), h.Semester.EndSemester)
			semesters.POST("/:id/join", limit(limitWrite), h.Semester.JoinSemester)
			semesters.DELETE("/:id", admin, limit(limitEnd), h.Semester.DeleteSemester)
		}

		// 连续打卡模块
		streak := authorized.Group("/user/streak")
		{
			streak.GET("", limit(limitRead), h.Streak.GetStreak)
			streak.PATCH("", limit(limitStreak), h.Streak.IncrementStreak)
		}

		// 留言板模块
		messages := authorized.Group("/messages")
		{
			messages.GET("", limit(limitRead), h.Message.ListMessages)
			messages.POST("", limit(limitWrite), h.Message.CreateMessage)
			messages.GET("/:id", limit(limitRead), h.Message.GetMessage)
			messages.PUT("/:id", limit(limitWrite), h.Message.UpdateMessage)
			messages.DELETE("/:id", limit(limitWrite), h.Message.DeleteMessage)
			messages.POST("/:id/replies", limit(limitReply), h.Message.CreateReply)
			messages.DELETE("/:id/replies/:reply_id", limit(limitReply), h.Message.DeleteReply)
			messages.POST("/:id/like", limit(limitLike), h.Message.LikeMessage)
			messages.DELETE("/:id/like", limit(limitLike), h.Message.UnlikeMessage)
		}
	}

	return r
}

// healthHandler 数据库不可用返回 503；Redis 不可用仅标记为 degraded
func healthHandler(db Pinger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "up"
			if err := rdb.Ping(ctx); err != nil {
				redisStatus = "down"
			}
		}

		status := "ok"
		if redisStatus == "down" {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "database": "up", "redis": redisStatus})
	}
}
