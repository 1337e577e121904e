package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/viralpost/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository stores sessions as JSON payload rows.
type SessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SessionRepository: repository instance bound to db.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create inserts a session, failing with domain.ErrSessionExists on a known id.
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return fmt.Errorf("failed to create session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSessionExists
	}
	return nil
}

// Get loads a session by id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: session ID.
// Returns:
//   - *domain.Session: decoded session.
//   - error: *domain.NotFoundError when absent.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	rec, err := r.find(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Put upserts a session inside a transaction, refusing to change a stored final post.
func (r *SessionRepository) Put(ctx context.Context, s *domain.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prev, err := r.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), s.ID)
		switch {
		case err == nil:
			stored, err := fromRecord(prev)
			if err != nil {
				return err
			}
			if err := domain.CheckTransition(stored, s); err != nil {
				return err
			}
		case !domain.IsNotFound(err):
			return err
		}

		rec, err := toRecord(s)
		if err != nil {
			return err
		}
		rec.UpdatedAt = r.now().UTC()
		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// Delete removes a session. Missing ids are ignored.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.SessionRecord{}, "id = ?", id).Error
}

// ListRecent returns the most recently updated sessions without decoding payloads.
func (r *SessionRepository) ListRecent(ctx context.Context, limit int) ([]domain.SessionRecord, error) {
	records := []domain.SessionRecord{}
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *SessionRepository) find(db *gorm.DB, id string) (*domain.SessionRecord, error) {
	var rec domain.SessionRecord
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Kind: "session", ID: id}
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &rec, nil
}

func toRecord(s *domain.Session) (*domain.SessionRecord, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return &domain.SessionRecord{
		ID:           s.ID,
		PipelineType: s.PipelineType,
		MemeStyle:    s.MemeStyle,
		FinalTweet:   s.FinalTweet,
		BlobURLs:     domain.StringArray(s.BlobURLs),
		Payload:      string(payload),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}, nil
}

func fromRecord(rec *domain.SessionRecord) (*domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal([]byte(rec.Payload), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", rec.ID, err)
	}
	return &s, nil
}
