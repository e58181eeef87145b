package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	STATUS_ACTIVE  = "active"
	STATUS_BLOCKED = "blocked"
)

type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TelegramID int64          `gorm:"uniqueIndex;not null" json:"telegram_id" validate:"required"`
	Username   string         `gorm:"type:varchar(150);default:null" json:"username" validate:"max=150"`
	FirstName  string         `gorm:"type:varchar(150);default:null" json:"first_name" validate:"max=150"`
	Status     string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active blocked"`
	Balance    int64          `gorm:"not null;default:0" json:"balance"`
	APIToken   string         `gorm:"type:varchar(100);index" json:"-"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(telegramID int64, username string) (*User, error) {
	u := &User{
		TelegramID: telegramID,
		Username:   username,
		Status:     STATUS_ACTIVE,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// GenerateAPIToken creates a random token used for cabinet API access.
func (u *User) GenerateAPIToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.APIToken = hex.EncodeToString(b)
	return nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}
