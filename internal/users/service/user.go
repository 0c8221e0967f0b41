package service

import (
	"context"
	"errors"
	"sync"
	"time"

	userserrors "bookspace/internal/users/errors"
	"bookspace/internal/users/repository"
	"bookspace/pkg/auth"
	"bookspace/pkg/config"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/events"
	"bookspace/pkg/model"
)

type UserService interface {
	GetMe(ctx context.Context, caller auth.Principal) (*model.User, error)
	GetAll(ctx context.Context, filter model.UserFilter, page, limit int) (*model.UserPage, error)
	Approve(ctx context.Context, id string) (*model.User, error)
	Reject(ctx context.Context, id string) (*model.User, error)
	Remove(ctx context.Context, id string) error
}

type userService struct {
	repo      repository.UserRepository
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewUserService(repo repository.UserRepository, publisher events.Publisher, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *userService) GetMe(ctx context.Context, caller auth.Principal) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, mapRepoError(caller.UserID, "Failed to retrieve user", err)
	}
	if user.IsDeleted {
		return nil, apperrors.NotFoundWithID("User", caller.UserID)
	}
	return user, nil
}

func (s *userService) GetAll(ctx context.Context, filter model.UserFilter, page, limit int) (*model.UserPage, error) {
	if filter.Status != "" {
		switch filter.Status {
		case config.UserPending, config.UserActive, config.UserRejected:
		default:
			return nil, apperrors.InvalidInput("invalid status filter: " + filter.Status)
		}
	}
	if page < 1 {
		page = 1
	}
	offset := int64(page-1) * int64(limit)

	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}

	totalPages := int64(0)
	if limit > 0 {
		totalPages = (count + int64(limit) - 1) / int64(limit)
	}
	return &model.UserPage{
		Users:       users,
		TotalCount:  count,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *userService) Approve(ctx context.Context, id string) (*model.User, error) {
	return s.setStatus(ctx, id, config.UserActive, events.UserApproved)
}

func (s *userService) Reject(ctx context.Context, id string) (*model.User, error) {
	return s.setStatus(ctx, id, config.UserRejected, events.UserRejected)
}

func (s *userService) setStatus(ctx context.Context, id, status string, eventType events.Type) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		s.cfg.Log.Warn("Failed to update user status", "id", id, "status", status, "error", err)
		return nil, mapRepoError(id, "Failed to update user", err)
	}

	s.cfg.Log.Info("User status changed", "id", id, "status", status)
	s.notify(ctx, eventType, user)
	return user, nil
}

// Remove soft-deletes a user. The record stays so bookings keep their owner.
func (s *userService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		s.cfg.Log.Warn("Failed to remove user", "id", id, "error", err)
		return mapRepoError(id, "Failed to remove user", err)
	}

	s.cfg.Log.Info("User removed", "id", id)
	s.notify(ctx, events.UserRemoved, user)
	return nil
}

func (s *userService) notify(ctx context.Context, eventType events.Type, user *model.User) {
	events.Emit(ctx, s.publisher, s.cfg.Log, events.Notification{
		Type:       eventType,
		Recipient:  user.Email,
		Name:       user.Name,
		OccurredAt: s.now().UTC(),
	})
}

func mapRepoError(id, message string, err error) error {
	if errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", id)
	}
	if errors.Is(err, userserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	return apperrors.Internal(message, err)
}
