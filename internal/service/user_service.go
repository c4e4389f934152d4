package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type UserService struct {
	users    domain.UserRepository
	validate *validator.Validate
	logger   *zerolog.Logger
}

func NewUserService(users domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *UserService) List(ctx context.Context) (_ []models.UserDTO, err error) {
	ctx, span := tracer.Start(ctx, "user.list")
	defer func() { finishSpan(span, err) }()

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (_ *models.UserDTO, err error) {
	ctx, span := tracer.Start(ctx, "user.get", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { finishSpan(span, err) }()

	u, err := requireUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	out := toUserDTO(*u)
	return &out, nil
}

func (s *UserService) Create(ctx context.Context, dto models.UserDTO) (_ *models.UserDTO, err error) {
	ctx, span := tracer.Start(ctx, "user.create")
	defer func() { finishSpan(span, err) }()

	name, email := strings.TrimSpace(dto.Name), strings.TrimSpace(dto.Email)
	if name == "" {
		return nil, domain.Validation("name must not be empty")
	}
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}

	user := models.User{Name: name, Email: email}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return nil, s.translate(err, email)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	out := toUserDTO(user)
	return &out, nil
}

// Update applies the non-empty fields of dto.
func (s *UserService) Update(ctx context.Context, id int64, dto models.UserDTO) (_ *models.UserDTO, err error) {
	ctx, span := tracer.Start(ctx, "user.update", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { finishSpan(span, err) }()

	user, err := requireUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(dto.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(dto.Email); email != "" {
		if err := s.checkEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("user %d not found", id)
		}
		return nil, s.translate(err, user.Email)
	}

	out := toUserDTO(*user)
	return &out, nil
}

// Delete removes the user with everything it owns. Missing users are ignored.
func (s *UserService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "user.delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { finishSpan(span, err) }()

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) checkEmail(email string) error {
	if email == "" {
		return domain.Validation("email must not be empty")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return domain.Validation("email %q is not valid", email)
	}
	return nil
}

func (s *UserService) translate(err error, email string) error {
	if errors.Is(err, database.ErrDuplicate) {
		return domain.Conflict("email %s is already registered", email)
	}
	return fmt.Errorf("save user: %w", err)
}
