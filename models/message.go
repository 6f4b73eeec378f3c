package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is one complete chat turn: the user utterance together with the
// bot reply. The pair is always persisted as a single row.
type Message struct {
	gorm.Model
	ConversationID uint   `gorm:"index;not null"`
	UserID         uint   `gorm:"index;not null"`
	UserMessage    string `gorm:"type:text;not null"`
	BotMessage     string `gorm:"type:text;not null"`
	// RawModelOutput keeps the unparsed model text for admin audit.
	RawModelOutput string    `gorm:"type:text"`
	Timestamp      time.Time `gorm:"autoCreateTime"`
}
