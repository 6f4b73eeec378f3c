package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"NutriGuide/models"
	utils "NutriGuide/pkg/utills"
)

// ConversationListItem is one sidebar row.
type ConversationListItem struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
}

const defaultConversationTitle = "New Conversation"

// autoTitleLimit bounds titles derived from the first user message,
// ellipsis included.
const autoTitleLimit = 30

func (s *Store) CreateConversation(ctx context.Context, userID uint, title string) (*models.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultConversationTitle
	}
	conv := models.Conversation{UserID: userID, Title: title}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("create conversation failed: %w", err)
	}
	return &conv, nil
}

// AppendMessage stores one complete (user, bot) pair and bumps the
// conversation's updated_at. conversationID 0 first creates a conversation
// titled from the user text; creation and insert share one transaction so
// a failed insert never leaves an orphan. Returns the conversation and its
// message count after the append.
func (s *Store) AppendMessage(ctx context.Context, conversationID, userID uint, userText, botText, rawOutput string, admin bool) (*models.Conversation, int64, error) {
	if strings.TrimSpace(userText) == "" || strings.TrimSpace(botText) == "" {
		return nil, 0, ErrEmptyMessage
	}

	var conv models.Conversation
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if conversationID == 0 {
			conv = models.Conversation{UserID: userID, Title: utils.Truncate(userText, autoTitleLimit)}
			if err := tx.Create(&conv).Error; err != nil {
				return fmt.Errorf("create conversation failed: %w", err)
			}
		} else {
			if err := ownedConversation(tx, conversationID, userID, admin, &conv); err != nil {
				return err
			}
		}

		msg := models.Message{
			ConversationID: conv.ID,
			UserID:         conv.UserID,
			UserMessage:    userText,
			BotMessage:     botText,
			RawModelOutput: rawOutput,
			Timestamp:      time.Now(),
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("save message failed: %w", err)
		}
		if err := tx.Model(&conv).Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("bump conversation failed: %w", err)
		}
		if err := tx.Model(&models.Message{}).Where("conversation_id = ?", conv.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("count messages failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	_ = s.hist.Invalidate(ctx, conv.ID)
	return &conv, count, nil
}

func (s *Store) GetConversation(ctx context.Context, conversationID, userID uint, admin bool) (*models.Conversation, error) {
	var conv models.Conversation
	if err := ownedConversation(s.db.WithContext(ctx), conversationID, userID, admin, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Messages returns the conversation's turns in timestamp order. Reads go
// through the redis history cache when one is configured.
func (s *Store) Messages(ctx context.Context, conversationID, userID uint, admin bool) ([]models.Message, error) {
	var conv models.Conversation
	if err := ownedConversation(s.db.WithContext(ctx), conversationID, userID, admin, &conv); err != nil {
		return nil, err
	}

	if cached, ok, err := s.hist.GetHistory(ctx, conversationID); err == nil && ok {
		return cached, nil
	}

	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("load messages failed: %w", err)
	}
	_ = s.hist.SetHistory(ctx, conversationID, messages)
	return messages, nil
}

func (s *Store) ListConversations(ctx context.Context, userID uint) ([]ConversationListItem, error) {
	var rows []ConversationListItem
	err := s.db.WithContext(ctx).Raw(`
		SELECT c.id, c.title, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m
		         WHERE m.conversation_id = c.id AND m.deleted_at IS NULL) AS message_count
		FROM conversations c
		WHERE c.user_id = ? AND c.deleted_at IS NULL
		ORDER BY c.updated_at DESC`, userID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return rows, nil
}

// MostRecent returns the user's most recently updated conversation and its
// messages, or ErrNotFound when the user has none yet.
func (s *Store) MostRecent(ctx context.Context, userID uint) (*models.Conversation, []models.Message, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load recent conversation failed: %w", err)
	}

	messages, err := s.Messages(ctx, conv.ID, userID, false)
	if err != nil {
		return nil, nil, err
	}
	return &conv, messages, nil
}

func (s *Store) RenameConversation(ctx context.Context, conversationID, userID uint, title string, admin bool) error {
	var conv models.Conversation
	if err := ownedConversation(s.db.WithContext(ctx), conversationID, userID, admin, &conv); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&conv).Update("title", title).Error; err != nil {
		return fmt.Errorf("rename conversation failed: %w", err)
	}
	return nil
}

// DeleteConversation removes the messages and the conversation row as one
// all-or-nothing unit.
func (s *Store) DeleteConversation(ctx context.Context, conversationID, userID uint, admin bool) error {
	var conv models.Conversation
	if err := ownedConversation(s.db.WithContext(ctx), conversationID, userID, admin, &conv); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages failed: %w", err)
		}
		if err := tx.Unscoped().Delete(&conv).Error; err != nil {
			return fmt.Errorf("delete conversation failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.hist.Invalidate(ctx, conversationID)
	return nil
}

// SetSummary overwrites the rolling summary; no history is kept.
func (s *Store) SetSummary(ctx context.Context, conversationID uint, summary string) error {
	res := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("summary", summary)
	if res.Error != nil {
		return fmt.Errorf("set summary failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkTitled records that title generation ran for this conversation,
// successful or not, so it is never attempted again.
func (s *Store) MarkTitled(ctx context.Context, conversationID uint) error {
	err := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("title_generated", true).Error
	if err != nil {
		return fmt.Errorf("mark titled failed: %w", err)
	}
	return nil
}

// ownedConversation loads the conversation and enforces ownership. Admins
// bypass the ownership check but still get ErrNotFound for absent rows.
func ownedConversation(db *gorm.DB, conversationID, userID uint, admin bool, out *models.Conversation) error {
	err := db.First(out, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup conversation failed: %w", err)
	}
	if !admin && out.UserID != userID {
		return ErrForbidden
	}
	return nil
}
