// Package dto はaccountフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "account_backend/internal/feature/account/usecase"

// Bodies are accepted as JSON or urlencoded form, hence both tag sets.
// Field rules live in the usecase so every violation is reported together.

// SignUpReq は/signUpエンドポイントのリクエストボディを表します。
type SignUpReq struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// ToInput converts the request to the usecase input.
func (r SignUpReq) ToInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Name:            r.Name,
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// LoginReq は/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ToInput converts the request to the usecase input.
func (r LoginReq) ToInput() usecase.LoginInput {
	return usecase.LoginInput{Email: r.Email, Password: r.Password}
}

// ResetPasswordReq は/resetPasswordエンドポイントのリクエストボディを表します。
type ResetPasswordReq struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// ToInput converts the request to the usecase input.
func (r ResetPasswordReq) ToInput() usecase.ResetPasswordInput {
	return usecase.ResetPasswordInput{
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// UpdateUserReq は/updateuser/:idエンドポイントのリクエストボディを表します。
type UpdateUserReq struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// ToInput converts the request to the usecase input.
func (r UpdateUserReq) ToInput() usecase.UpdateUserInput {
	return usecase.UpdateUserInput{
		Name:            r.Name,
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
}
