// Package router assembles the gin engine.
package router

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	accounthandler "account_backend/internal/feature/account/transport/handler"
	platformhandler "account_backend/internal/platform/http/handler"
	"account_backend/internal/platform/http/middleware"
	jwtmw "account_backend/internal/platform/jwt"
)

// Deps are the components the router mounts.
type Deps struct {
	Account *accounthandler.AccountHandler
	Tokens  jwtmw.TokenVerifier
	Users   jwtmw.UserFinder
	// Health checks the identity store; nil always reports healthy.
	Health      platformhandler.CheckFunc
	Metrics     *middleware.Metrics
	Logger      *slog.Logger
	CORSEnabled bool
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r.Use(middleware.RequestLogger(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	if d.CORSEnabled {
		cfg := cors.DefaultConfig()
		cfg.AllowAllOrigins = true
		cfg.AddAllowHeaders("Authorization", middleware.RequestIDHeader)
		cfg.AddExposeHeaders(middleware.RequestIDHeader)
		r.Use(cors.New(cfg))
	}

	// 導通確認用
	health := platformhandler.Health(d.Health)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}

	// トークンからのユーザー解決は認証が必要なルートにだけ適用する
	authenticate := jwtmw.Authenticate(d.Tokens, d.Users)

	users := r.Group("/api/users")
	{
		users.POST("/signUp", d.Account.SignUp)
		users.POST("/login", d.Account.Login)
		users.GET("/getCurrentLoggedInUser", authenticate, d.Account.GetCurrentUser)
		users.POST("/resetPassword", d.Account.ResetPassword)
		users.GET("/list", d.Account.List)
		users.GET("/remove/:id", d.Account.Remove)
		users.POST("/updateuser/:id", d.Account.UpdateUser)
	}

	return r
}
