package adapters

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"account_backend/internal/feature/account/domain/entity"
)

// UserModel is the GORM model for the users table.
// Its columns must match the SQL files under platform/db/migrations.
//
// NameFold and EmailFold hold the lowercased name and email. List matches
// against them because SQLite's LOWER only folds ASCII.
type UserModel struct {
	ID               string     `gorm:"primaryKey;size:26"`
	Name             string     `gorm:"size:255;not null"`
	Email            string     `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash     string     `gorm:"size:255;not null"`
	CreatedAt        time.Time  `gorm:"not null"`
	LastUpdationTime *time.Time `gorm:"column:last_updation_time"`
	NameFold         string     `gorm:"size:255;not null;default:''"`
	EmailFold        string     `gorm:"size:255;not null;default:''"`
}

// fold is the case folding shared by the stored search columns and the search term.
func fold(s string) string {
	return strings.ToLower(s)
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate assigns a ULID when the row has no id yet.
// ULIDs sort by creation time, which keeps List ordering stable.
func (m *UserModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID != "" {
		return nil
	}
	now := m.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return err
	}
	m.ID = id.String()
	return nil
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		CreatedAt:        m.CreatedAt,
		LastUpdationTime: m.LastUpdationTime,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		CreatedAt:        u.CreatedAt,
		LastUpdationTime: u.LastUpdationTime,
		NameFold:         fold(u.Name),
		EmailFold:        fold(u.Email),
	}
}
