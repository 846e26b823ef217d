package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account_backend/internal/feature/account/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを保存し、ストアが採番したIDをuser.IDに設定します。
	// メールアドレスが重複する場合はErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスに一致するユーザーを取得します。
	// 存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDに一致するユーザーを取得します。
	// 存在しない場合（不正な形式のIDを含む）はErrUserNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// Update は既存ユーザーの可変フィールドを保存します。
	Update(ctx context.Context, user *entity.User) error

	// Delete はIDに一致するユーザーを削除します。
	Delete(ctx context.Context, id string) error

	// List は名前またはメールアドレスにsearchTermを含むユーザーを作成順に返します（大文字小文字を区別しない）。
	// searchTermが空の場合は全ユーザーを返します。
	List(ctx context.Context, searchTerm string) ([]entity.User, error)
}

// PasswordHasher はパスワードのハッシュ化と照合を抽象化します。
// 受け付けられない長さのパスワードにはErrPasswordTooLongを返します。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenGenerator は署名済みトークンの発行を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenGenerator interface {
	GenerateToken(userID, name string) (string, error)
}

// AccountUsecase はアカウント操作のビジネスロジックを実装します。
type AccountUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenGenerator
	now    func() time.Time
}

// NewAccountUsecase はAccountUsecaseの新しいインスタンスを生成します。
func NewAccountUsecase(users UserRepository, hasher PasswordHasher, tokens TokenGenerator) *AccountUsecase {
	return &AccountUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register は入力を検証し、ハッシュ化したパスワードで新規ユーザーを登録します。
func (u *AccountUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if err := u.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	hashed, err := u.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		CreatedAt:    u.now(),
	}
	// 事前チェックと挿入の間の競合はストアのユニークインデックスがErrEmailAlreadyExistsとして検出する
	if err := u.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login はメールアドレスとパスワードを検証し、成功時に署名済みトークンを返します。
func (u *AccountUsecase) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := validateWith(in, loginMessages); err != nil {
		return "", err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Name)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ResetPassword はメールアドレスで特定したユーザーのパスワードを置き換えます。
func (u *AccountUsecase) ResetPassword(ctx context.Context, in ResetPasswordInput) (*entity.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	hashed, err := u.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hashed
	user.Touch(u.now())

	if err := u.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateUser は指定されたフィールドのみをユーザーに反映します。
// パスワードが指定された場合のみ再ハッシュします。
func (u *AccountUsecase) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if in.Email != user.Email {
		if err := u.ensureEmailFree(ctx, in.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = in.Email
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Password != "" {
		hashed, err := u.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	user.Touch(u.now())

	if err := u.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// GetCurrentUser は認証ミドルウェアが解決したユーザーを返します。
// 解決済みのユーザーがいない場合はErrUnauthenticatedを返します。
func (u *AccountUsecase) GetCurrentUser(_ context.Context, identity *entity.User) (*entity.User, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	return identity, nil
}

// ListUsers は検索語に一致するユーザー一覧を返します。
// 検索語は前後の空白も含めてそのまま照合します。
func (u *AccountUsecase) ListUsers(ctx context.Context, searchTerm string) ([]entity.User, error) {
	users, err := u.users.List(ctx, searchTerm)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// RemoveUser はユーザーを削除し、削除したユーザーを返します。
func (u *AccountUsecase) RemoveUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if err := u.users.Delete(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

// ensureEmailFree returns ErrEmailAlreadyExists when email belongs to a user other than ownerID.
func (u *AccountUsecase) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := u.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up email: %w", err)
	case existing.ID != ownerID:
		return ErrEmailAlreadyExists
	default:
		return nil
	}
}

func (u *AccountUsecase) hashPassword(password string) (string, error) {
	hashed, err := u.hasher.Hash(password)
	if errors.Is(err, ErrPasswordTooLong) {
		return "", &ValidationError{Fields: map[string]string{"password": "Password is too long"}}
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hashed, nil
}
