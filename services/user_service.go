package services

import (
	"context"
	"errors"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"gorm.io/gorm"
)

// ErrNotAuthenticated is the uniform signal for any identity-resolution
// miss. Callers must never leak anything more specific.
var ErrNotAuthenticated = errors.New("not authenticated")

const accessCodeLength = 8

type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

// ResolveByCode maps an opaque access code to the user it belongs to.
func (s *UserService) ResolveByCode(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, ErrNotAuthenticated
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return &user, nil
}

// ResolveByTelegramID maps the external chat identifier to the user.
func (s *UserService) ResolveByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	if telegramID == "" {
		return nil, ErrNotAuthenticated
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return &user, nil
}

// Register creates a user for the given chat id with a fresh access code.
// Registering an already-known chat id simply returns the existing user.
func (s *UserService) Register(ctx context.Context, telegramID, username string) (*models.User, error) {
	if existing, err := s.ResolveByTelegramID(ctx, telegramID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotAuthenticated) {
		return nil, err
	}

	user := models.User{
		TelegramID: telegramID,
		Code:       utils.GenerateAccessCode(accessCodeLength),
		Username:   username,
	}
	// Retry on the (unlikely) code collision against the unique index.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = s.db.WithContext(ctx).Create(&user).Error; err == nil {
			return &user, nil
		}
		user.Code = utils.GenerateAccessCode(accessCodeLength)
	}
	return nil, err
}

// List returns every registered user, for the bot's scheduled reports.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}
