package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"NutriGuide/models"
)

func (s *Store) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)

	var exists models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&exists).Error
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup username failed: %w", err)
	}

	user := models.User{Username: username, IsAdmin: isAdmin}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user failed: %w", err)
	}
	return &user, nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user failed: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user failed: %w", err)
	}
	return &user, nil
}

// ListUsers returns one page of users, newest first, optionally filtered by
// admin flag, plus the total count under the same filter.
func (s *Store) ListUsers(ctx context.Context, page, perPage int, adminFilter *bool) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	q := s.db.WithContext(ctx).Model(&models.User{})
	if adminFilter != nil {
		q = q.Where("is_admin = ?", *adminFilter)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users failed: %w", err)
	}

	var users []models.User
	err := q.Order("id DESC").Limit(perPage).Offset((page - 1) * perPage).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	return users, total, nil
}

// DeleteUser removes a user together with their conversations and messages.
// The acting admin can never remove their own account.
func (s *Store) DeleteUser(ctx context.Context, id, actingUserID uint) error {
	if id == actingUserID {
		return ErrCannotDeleteSelf
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup user failed: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var convIDs []uint
		if err := tx.Model(&models.Conversation{}).Where("user_id = ?", id).Pluck("id", &convIDs).Error; err != nil {
			return fmt.Errorf("collect conversations failed: %w", err)
		}
		if len(convIDs) > 0 {
			if err := tx.Unscoped().Where("conversation_id IN ?", convIDs).Delete(&models.Message{}).Error; err != nil {
				return fmt.Errorf("delete messages failed: %w", err)
			}
			if err := tx.Unscoped().Where("id IN ?", convIDs).Delete(&models.Conversation{}).Error; err != nil {
				return fmt.Errorf("delete conversations failed: %w", err)
			}
		}
		if err := tx.Unscoped().Delete(&user).Error; err != nil {
			return fmt.Errorf("delete user failed: %w", err)
		}
		return nil
	})
}
