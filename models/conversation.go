package models

import "gorm.io/gorm"

type Conversation struct {
	gorm.Model
	UserID uint   `gorm:"not null;index"`
	Title  string `gorm:"size:200"`
	// Summary is the AI-maintained rolling digest of the thread, reused as
	// compressed context for later prompts. Last write wins.
	Summary string `gorm:"type:text"`
	// TitleGenerated marks that an AI title was already attempted, so a
	// failed attempt never retries on subsequent messages.
	TitleGenerated bool      `gorm:"not null;default:false"`
	Messages       []Message `gorm:"constraint:OnDelete:CASCADE"`
}
