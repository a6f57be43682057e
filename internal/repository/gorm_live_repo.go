package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/pkg/log"
)

// GormLiveRepository implements LiveRepository using GORM.
type GormLiveRepository struct {
	db *gorm.DB
}

// NewGormLiveRepository creates a new GORM-based live session repository.
func NewGormLiveRepository(db *gorm.DB) *GormLiveRepository {
	return &GormLiveRepository{db: db}
}

// Create creates a new live session.
func (r *GormLiveRepository) Create(ctx context.Context, session *domain.LiveSession) error {
	l := log.Ctx(ctx)

	session.ID = uuid.New().String()
	session.Status = domain.SessionStatusLive
	session.StartTime = time.Now()

	model := domain.SessionToModel(session)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create live session in db")
		return result.Error
	}

	l.Debug().Str(log.FieldSessionID, session.ID).Msg("live session created in db")
	return nil
}

// GetByID retrieves a live session by ID.
func (r *GormLiveRepository) GetByID(ctx context.Context, id string) (*domain.LiveSession, error) {
	l := log.Ctx(ctx)

	var model domain.LiveSessionModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldSessionID, id).Msg("failed to get live session by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// FindActive returns the single LIVE session, if any.
func (r *GormLiveRepository) FindActive(ctx context.Context) (*domain.LiveSession, error) {
	l := log.Ctx(ctx)

	var model domain.LiveSessionModel
	result := r.db.WithContext(ctx).
		Where("status = ?", string(domain.SessionStatusLive)).
		Order("start_time DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		l.Error().Err(result.Error).Msg("failed to find active live session")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List retrieves live sessions with pagination, newest first.
func (r *GormLiveRepository) List(ctx context.Context, page, pageSize int) ([]domain.LiveSession, int, error) {
	l := log.Ctx(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	query := r.db.WithContext(ctx).Model(&domain.LiveSessionModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count live sessions")
		return nil, 0, err
	}

	var models []domain.LiveSessionModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list live sessions from db")
		return nil, 0, err
	}

	sessions := make([]domain.LiveSession, len(models))
	for i, model := range models {
		sessions[i] = *model.ToDomain()
	}

	return sessions, int(total), nil
}

// End marks a LIVE session as ENDED.
func (r *GormLiveRepository) End(ctx context.Context, id string) error {
	l := log.Ctx(ctx)

	now := time.Now()
	result := r.db.WithContext(ctx).Model(&domain.LiveSessionModel{}).
		Where("id = ? AND status = ?", id, string(domain.SessionStatusLive)).
		Updates(map[string]interface{}{
			"status":   string(domain.SessionStatusEnded),
			"end_time": now,
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldSessionID, id).Msg("failed to end live session in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	l.Debug().Str(log.FieldSessionID, id).Msg("live session ended in db")
	return nil
}

// UpdateViewerCount stores the current viewer count. The in-memory room
// membership is authoritative; this write is best-effort.
func (r *GormLiveRepository) UpdateViewerCount(ctx context.Context, id string, count int) error {
	result := r.db.WithContext(ctx).Model(&domain.LiveSessionModel{}).
		Where("id = ?", id).
		Update("viewer_count", count)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// CreateChatMessage persists a chat message against the authenticated
// user's ID.
func (r *GormLiveRepository) CreateChatMessage(ctx context.Context, sessionID, userID, message string) error {
	l := log.Ctx(ctx)

	model := &domain.ChatMessageModel{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Message:   message,
	}
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldSessionID, sessionID).Msg("failed to persist chat message")
		return result.Error
	}
	return nil
}

// ListChatMessages returns the most recent chat messages of a session
// in chronological order.
func (r *GormLiveRepository) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	l := log.Ctx(ctx)

	if limit < 1 || limit > 500 {
		limit = 100
	}

	var models []domain.ChatMessageModel
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldSessionID, sessionID).Msg("failed to list chat messages")
		return nil, result.Error
	}

	messages := make([]domain.ChatMessage, len(models))
	for i := range models {
		messages[len(models)-1-i] = *models[i].ToDomain()
	}
	return messages, nil
}
