package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ChatMessage has no foreign key on UserID: authors are not checked at append time.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

type ChatMessageDAO struct {
	db *gorm.DB
}

func NewChatMessageDAO(db *gorm.DB) *ChatMessageDAO {
	return &ChatMessageDAO{
		db: db,
	}
}

func (d *ChatMessageDAO) Insert(ctx context.Context, message ChatMessage) (ChatMessage, error) {
	message.ID = 0
	message.CreatedAt = time.Now().UTC()

	result := d.db.WithContext(ctx).Create(&message)
	if result.Error != nil {
		return ChatMessage{}, result.Error
	}

	return message, nil
}

// FindLatest returns up to limit messages, newest first.
func (d *ChatMessageDAO) FindLatest(ctx context.Context, limit int) ([]ChatMessage, error) {
	var messages []ChatMessage

	result := d.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}

	return messages, nil
}

func (d *ChatMessageDAO) Count(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&ChatMessage{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
