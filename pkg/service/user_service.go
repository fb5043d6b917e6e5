package service

import (
	"context"
	"errors"
	"fmt"

	"bookstore/pkg/dto"
	"bookstore/pkg/store"
	"bookstore/pkg/validation"

	"go.uber.org/zap"
)

type UserService struct {
	users  store.UserStore
	logger *zap.Logger
}

func NewUserService(users store.UserStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger.Named("user")}
}

func (s *UserService) AddUser(ctx context.Context, req dto.UserDTO) (dto.UserDTO, error) {
	if err := validation.User(req, false); err != nil {
		s.logger.Warn("Invalid user creation request", zap.Error(err))
		return dto.UserDTO{}, err
	}

	user := req.ToUser(true)
	if err := s.users.CreateUser(ctx, user); err != nil {
		return dto.UserDTO{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User created", zap.String("user_id", user.ID))
	return dto.NewUserDTO(user), nil
}

func (s *UserService) UpdateUser(ctx context.Context, req dto.UserDTO) (dto.UserDTO, error) {
	if err := validation.User(req, true); err != nil {
		s.logger.Warn("Invalid user update request", zap.String("user_id", req.ID), zap.Error(err))
		return dto.UserDTO{}, err
	}

	user, err := s.users.FindUser(ctx, req.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("User not found", zap.String("user_id", req.ID))
		}
		return dto.UserDTO{}, resolve(err, "user")
	}

	user.UserName = req.UserName
	user.Email = req.Email
	user.PhoneNumber = req.PhoneNumber
	if err := s.users.SaveUser(ctx, user); err != nil {
		return dto.UserDTO{}, resolve(err, "user")
	}

	s.logger.Info("User updated", zap.String("user_id", user.ID))
	return dto.NewUserDTO(user), nil
}

// DeleteUserByID removes the user together with the reviews it wrote.
func (s *UserService) DeleteUserByID(ctx context.Context, userID string) error {
	if _, err := s.users.FindUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("User not found", zap.String("user_id", userID))
		}
		return resolve(err, "user")
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return resolve(err, "user")
	}

	s.logger.Info("User deleted", zap.String("user_id", userID))
	return nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (dto.UserDTO, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("User not found", zap.String("user_id", userID))
		}
		return dto.UserDTO{}, resolve(err, "user")
	}
	return dto.NewUserDTO(user), nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]dto.UserDTO, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserDTO(&users[i]))
	}
	return out, nil
}
