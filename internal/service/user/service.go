package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Service управляет учётными записями покупателей. Секрет учётной записи
// хранится как непрозрачная строка; хеширование — зона ответственности вызывающего.
type Service struct {
	users  domain.UserRepository
	logger *log.Entry
}

// NewService создаёт сервис пользователей.
func NewService(users domain.UserRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "user-service")
	}
	return &Service{users: users, logger: logger}
}

// Create регистрирует нового пользователя.
func (s *Service) Create(ctx context.Context, user domain.User) (domain.UserDto, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserDto{}, err
	}

	user.Email = strings.TrimSpace(user.Email)
	if errs := user.ValidateInvariants(); len(errs) != 0 {
		return domain.UserDto{}, errs[0]
	}

	taken, err := s.users.ExistsByEmail(user.Email)
	if err != nil {
		return domain.UserDto{}, err
	}
	if taken {
		return domain.UserDto{}, domain.ErrEmailTaken
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.users.Create(user); err != nil {
		return domain.UserDto{}, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return domain.ToUserDto(user), nil
}

// Get возвращает пользователя по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.UserDto, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserDto{}, err
	}
	user, err := s.users.Get(id)
	if err != nil {
		return domain.UserDto{}, err
	}
	return domain.ToUserDto(user), nil
}

// GetByEmail возвращает пользователя по email.
func (s *Service) GetByEmail(ctx context.Context, email string) (domain.UserDto, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserDto{}, err
	}
	user, err := s.users.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return domain.UserDto{}, err
	}
	return domain.ToUserDto(user), nil
}

// Update изменяет профиль пользователя. Пустой email и пустой секрет
// трактуются как "оставить прежнее значение".
func (s *Service) Update(ctx context.Context, user domain.User) (domain.UserDto, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserDto{}, err
	}

	current, err := s.users.Get(user.ID)
	if err != nil {
		return domain.UserDto{}, err
	}

	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		user.Email = current.Email
	}
	if user.PasswordHash == "" {
		user.PasswordHash = current.PasswordHash
	}
	if errs := user.ValidateInvariants(); len(errs) != 0 {
		return domain.UserDto{}, errs[0]
	}

	if !strings.EqualFold(user.Email, current.Email) {
		taken, err := s.users.ExistsByEmail(user.Email)
		if err != nil {
			return domain.UserDto{}, err
		}
		if taken {
			return domain.UserDto{}, domain.ErrEmailTaken
		}
	}

	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(user); err != nil {
		return domain.UserDto{}, err
	}
	return domain.ToUserDto(user), nil
}

// Delete удаляет учётную запись.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.users.Delete(id)
}
