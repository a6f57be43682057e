package domain

import (
	"time"

	"gorm.io/gorm"
)

// UserModel is the GORM model for the users table. The table is owned
// by the REST API; the gateway only reads it.
type UserModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	Username  string `gorm:"type:varchar(50);uniqueIndex;not null"`
	IsAdmin   bool   `gorm:"default:false"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:       m.ID,
		Username: m.Username,
		IsAdmin:  m.IsAdmin,
	}
}

// LiveSessionModel is the GORM model for the live_sessions table.
type LiveSessionModel struct {
	ID            string `gorm:"type:varchar(36);primaryKey"`
	BroadcasterID string `gorm:"type:varchar(36);index;not null"`
	Title         string `gorm:"type:varchar(200);not null"`
	Description   string `gorm:"type:text"`
	Status        string `gorm:"type:varchar(20);index;not null;default:'LIVE'"`
	StartTime     time.Time
	EndTime       *time.Time
	ViewerCount   int       `gorm:"default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for LiveSessionModel.
func (LiveSessionModel) TableName() string {
	return "live_sessions"
}

// ToDomain converts LiveSessionModel to domain LiveSession.
func (m *LiveSessionModel) ToDomain() *LiveSession {
	return &LiveSession{
		ID:            m.ID,
		BroadcasterID: m.BroadcasterID,
		Title:         m.Title,
		Description:   m.Description,
		Status:        SessionStatus(m.Status),
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		ViewerCount:   m.ViewerCount,
	}
}

// SessionToModel converts domain LiveSession to LiveSessionModel.
func SessionToModel(s *LiveSession) *LiveSessionModel {
	return &LiveSessionModel{
		ID:            s.ID,
		BroadcasterID: s.BroadcasterID,
		Title:         s.Title,
		Description:   s.Description,
		Status:        string(s.Status),
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		ViewerCount:   s.ViewerCount,
	}
}

// ChatMessageModel is the GORM model for the live_chat_messages table.
type ChatMessageModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	SessionID string    `gorm:"type:varchar(36);index;not null"`
	UserID    string    `gorm:"type:varchar(36);index;not null"`
	Message   string    `gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ChatMessageModel.
func (ChatMessageModel) TableName() string {
	return "live_chat_messages"
}

// ToDomain converts ChatMessageModel to domain ChatMessage.
func (m *ChatMessageModel) ToDomain() *ChatMessage {
	return &ChatMessage{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}
