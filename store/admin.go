package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"NutriGuide/models"
)

// AdminConversationItem is one row of the moderation list, joined with the
// owner's username.
type AdminConversationItem struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Stats struct {
	Users         int64 `json:"users"`
	Conversations int64 `json:"conversations"`
	Messages      int64 `json:"messages"`
}

// ListAllConversations pages through every conversation, newest activity
// first, optionally narrowed to one user.
func (s *Store) ListAllConversations(ctx context.Context, page, perPage int, userID *uint) ([]AdminConversationItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	countQ := s.db.WithContext(ctx).Model(&models.Conversation{})
	if userID != nil {
		countQ = countQ.Where("user_id = ?", *userID)
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count conversations failed: %w", err)
	}

	q := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Select("conversations.id, conversations.user_id, users.username, conversations.title, conversations.created_at, conversations.updated_at").
		Joins("JOIN users ON users.id = conversations.user_id").
		Order("conversations.updated_at DESC").
		Limit(perPage).Offset((page - 1) * perPage)
	if userID != nil {
		q = q.Where("conversations.user_id = ?", *userID)
	}

	var rows []AdminConversationItem
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list conversations failed: %w", err)
	}
	return rows, total, nil
}

// ConversationDump returns a conversation with every message including the
// raw model output. No ownership check: callers sit behind the admin gate.
func (s *Store) ConversationDump(ctx context.Context, conversationID uint) (*models.Conversation, []models.Message, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).First(&conv, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup conversation failed: %w", err)
	}

	var messages []models.Message
	err = s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, nil, fmt.Errorf("load messages failed: %w", err)
	}
	return &conv, messages, nil
}

func (s *Store) CountStats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&st.Users).Error; err != nil {
		return st, fmt.Errorf("count users failed: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Conversation{}).Count(&st.Conversations).Error; err != nil {
		return st, fmt.Errorf("count conversations failed: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Message{}).Count(&st.Messages).Error; err != nil {
		return st, fmt.Errorf("count messages failed: %w", err)
	}
	return st, nil
}
