// Package handler はaccountフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/transport/http/dto"
	"account_backend/internal/feature/account/usecase"
	jwtmw "account_backend/internal/platform/jwt"
)

// AccountUsecase はアカウント操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AccountUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, in usecase.LoginInput) (string, error)
	ResetPassword(ctx context.Context, in usecase.ResetPasswordInput) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, in usecase.UpdateUserInput) (*entity.User, error)
	GetCurrentUser(ctx context.Context, identity *entity.User) (*entity.User, error)
	ListUsers(ctx context.Context, searchTerm string) ([]entity.User, error)
	RemoveUser(ctx context.Context, id string) (*entity.User, error)
}

var (
	emailExistsBody   = gin.H{"email": "Email already exists"}
	emailNotFoundBody = gin.H{"email": "Email not found"}
	badPasswordBody   = gin.H{"password": "Password incorrect"}
	userNotFoundBody  = dto.MessageRes{Message: "User not found"}
	invalidTokenBody  = dto.MessageRes{Message: "Invalid JWT token"}
	invalidBodyBody   = dto.MessageRes{Message: "invalid request body"}
	internalErrorBody = dto.MessageRes{Message: "internal server error"}
)

// AccountHandler はアカウント操作のHTTPリクエストを処理します。
type AccountHandler struct {
	accounts AccountUsecase
}

// NewAccountHandler はAccountHandlerの新しいインスタンスを生成します。
func NewAccountHandler(accounts AccountUsecase) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// SignUp はユーザー登録APIエンドポイントを処理します。
// - 入力エラーは項目ごとのメッセージで400を返却
// - メール重複時は400 {"email":"Email already exists"}
// - 成功時はパスワードハッシュを除いたユーザーを200で返却
func (h *AccountHandler) SignUp(c *gin.Context) {
	var req dto.SignUpReq
	if !bindBody(c, &req) {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			slog.Warn("signup rejected: email exists", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, emailExistsBody)
			return
		}
		respondError(c, "signup failed", err)
		return
	}

	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 未登録メールは404、パスワード不一致は400を返却
// - 成功時は {"success":true,"token":...} を返却
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindBody(c, &req) {
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.ToInput())
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		slog.Warn("login failed: email not found", "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusNotFound, emailNotFoundBody)
		return
	case errors.Is(err, usecase.ErrInvalidCredentials):
		slog.Warn("login failed: password incorrect", "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, badPasswordBody)
		return
	case err != nil:
		respondError(c, "login failed", err)
		return
	}

	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{Success: true, Token: token})
}

// GetCurrentUser は認証ミドルウェアが解決したユーザーを返します。
// 解決済みのユーザーがいない場合は403を返却します。
func (h *AccountHandler) GetCurrentUser(c *gin.Context) {
	identity, _ := jwtmw.UserFromContext(c.Request.Context())

	user, err := h.accounts.GetCurrentUser(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthenticated) {
			c.JSON(http.StatusForbidden, invalidTokenBody)
			return
		}
		respondError(c, "get current user failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// ResetPassword はメールアドレスで特定したユーザーのパスワードを再設定します。
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if !bindBody(c, &req) {
		return
	}

	user, err := h.accounts.ResetPassword(c.Request.Context(), req.ToInput())
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, emailNotFoundBody)
			return
		}
		respondError(c, "reset password failed", err)
		return
	}

	slog.Info("password reset", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// List は?searchTerm=に一致するユーザー一覧を返します。
func (h *AccountHandler) List(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context(), c.Query("searchTerm"))
	if err != nil {
		respondError(c, "list users failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserListRes(users))
}

// Remove は:idのユーザーを削除し、削除したユーザーを返します。
func (h *AccountHandler) Remove(c *gin.Context) {
	user, err := h.accounts.RemoveUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, userNotFoundBody)
			return
		}
		respondError(c, "remove user failed", err)
		return
	}

	slog.Info("user removed", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// UpdateUser は:idのユーザーに指定されたフィールドを反映します。
func (h *AccountHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserReq
	if !bindBody(c, &req) {
		return
	}

	user, err := h.accounts.UpdateUser(c.Request.Context(), c.Param("id"), req.ToInput())
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, userNotFoundBody)
		return
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusBadRequest, emailExistsBody)
		return
	case err != nil:
		respondError(c, "update user failed", err)
		return
	}

	slog.Info("user updated", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// bindBody decodes a JSON or form body into req.
// An empty body binds as an empty request so the usecase reports the missing fields.
func bindBody(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("request body rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, invalidBodyBody)
		return false
	}
	return true
}

// respondError writes validation failures as a 400 field map and everything else as a generic 500.
func respondError(c *gin.Context, msg string, err error) {
	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, verr.Fields)
		return
	}
	slog.Error(msg, "error", err, "remote_addr", c.ClientIP())
	c.JSON(http.StatusInternalServerError, internalErrorBody)
}
