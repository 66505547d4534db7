package app

import (
	"context"

	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) BeginLabeling(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingImage)
}

// StartProcessing переводит пользователя в состояние обработки снимка.
func (s *UserService) StartProcessing(ctx context.Context, userID int64) error {
	return s.repo.UpdateState(ctx, userID, entity.StateProcessing)
}

// FinishLabeling возвращает пользователя в меню; success учитывает разметку.
func (s *UserService) FinishLabeling(ctx context.Context, userID, chatID int64, success bool) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if success {
		user.CompleteRun()
	} else {
		user.SetState(entity.StateMainMenu)
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
