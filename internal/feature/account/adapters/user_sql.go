// Package adapters はaccountフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// likeEscaper escapes LIKE wildcards so the search term is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// userSQL はUserRepositoryインターフェースのGORM実装です。
// PostgreSQLとSQLiteの両方で動作します。
// 重複キーの検出にはgorm.ConfigのTranslateErrorが有効である必要があります。
type userSQL struct {
	db *gorm.DB
}

// userSQLがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userSQL)(nil)

// NewUserSQL は指定されたgorm.DB接続でuserSQLの新しいインスタンスを生成します。
func NewUserSQL(db *gorm.DB) *userSQL {
	return &userSQL{db: db}
}

// Create はユーザーをデータベースに追加し、採番したIDをu.IDに設定します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userSQL) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	m := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.ID = m.ID
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userSQL) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userSQL) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userSQL) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Update は可変フィールド（名前、メール、パスワードハッシュ、更新日時）を保存します。
func (r *userSQL) Update(ctx context.Context, u *entity.User) error {
	res := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":               u.Name,
			"email":              u.Email,
			"password_hash":      u.PasswordHash,
			"last_updation_time": u.LastUpdationTime,
			"name_fold":          fold(u.Name),
			"email_fold":         fold(u.Email),
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// Delete はIDに一致するユーザーを削除します。
func (r *userSQL) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// RefreshSearchColumns fills name_fold and email_fold for rows written before those columns existed.
func RefreshSearchColumns(ctx context.Context, db *gorm.DB) error {
	var stale []UserModel
	if err := db.WithContext(ctx).Where("name_fold = '' OR email_fold = ''").Find(&stale).Error; err != nil {
		return err
	}
	for i := range stale {
		m := &stale[i]
		err := db.WithContext(ctx).
			Model(&UserModel{}).
			Where("id = ?", m.ID).
			Updates(map[string]any{"name_fold": fold(m.Name), "email_fold": fold(m.Email)}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// List は名前またはメールアドレスに検索語を含むユーザーを作成順で返します。
// 大文字小文字の区別はGo側で畳み込んだ列で吸収します。
func (r *userSQL) List(ctx context.Context, searchTerm string) ([]entity.User, error) {
	q := r.db.WithContext(ctx).Model(&UserModel{})
	if searchTerm != "" {
		pattern := "%" + likeEscaper.Replace(fold(searchTerm)) + "%"
		q = q.Where(`name_fold LIKE ? ESCAPE '\' OR email_fold LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var models []UserModel
	if err := q.Order("created_at ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]entity.User, 0, len(models))
	for i := range models {
		users = append(users, *models[i].ToEntity())
	}
	return users, nil
}
