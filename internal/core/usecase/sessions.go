package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/corpus"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

type SessionUseCase struct {
	repo    ports.SessionRepository
	corpora *corpus.Store
}

func NewSessionUseCase(repo ports.SessionRepository, corpora *corpus.Store) *SessionUseCase {
	return &SessionUseCase{repo: repo, corpora: corpora}
}

func (uc *SessionUseCase) Create(ctx context.Context, name string) (*domain.Session, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (uc *SessionUseCase) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := uc.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Delete removes the session row, its chat history, and the in-memory
// corpus with its dense collection.
func (uc *SessionUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := uc.corpora.Delete(ctx, id); err != nil {
		return fmt.Errorf("drop session corpus: %w", err)
	}
	return nil
}
