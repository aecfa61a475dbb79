package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campusmatch/campusmatch/internal/app"
	"github.com/campusmatch/campusmatch/internal/auth"
	"github.com/campusmatch/campusmatch/internal/db"
	svcErr "github.com/campusmatch/campusmatch/internal/errors"
	"github.com/campusmatch/campusmatch/internal/repository"
)

// Service implements registration, login and account moderation.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository

	jwtSecret string
	tokenTTL  time.Duration
}

func NewAccountService(appCtx *app.AppContext, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Gender      string
	Faculty     string
	YearOfStudy int
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *db.User
}

// Register creates a pending account. Swiping and chat stay locked until an
// admin approves it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	switch {
	case in.Username == "" || in.Email == "":
		return nil, svcErr.InvalidArgument("username and email are required")
	case len(in.Password) < 8:
		return nil, svcErr.InvalidArgument("password must be at least 8 characters")
	case in.Gender != "male" && in.Gender != "female":
		return nil, svcErr.InvalidArgument("gender must be male or female")
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		DisplayName:  in.DisplayName,
		Gender:       in.Gender,
		Faculty:      in.Faculty,
		YearOfStudy:  in.YearOfStudy,
		Role:         db.RoleMember,
		Status:       db.StatusPending,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, svcErr.ErrEmailTaken
		}
		s.appCtx.Logger.Error("failed to create user", "err", err)
		return nil, err
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues an access token. Suspended accounts
// cannot log in; pending accounts can (the client shows a waiting screen) but
// every gated operation rejects them.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, svcErr.ErrBadCredentials
	}
	if user.Status == db.StatusSuspended {
		return nil, svcErr.ErrSuspended
	}

	token, expiresAt, err := auth.Issue(s.jwtSecret, user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.TouchLastLogin(ctx, user.ID)

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RequireActive loads the user and rejects pending or suspended accounts.
// Gated operations (swipe, chat, discovery) call this before doing anything.
func (s *Service) RequireActive(ctx context.Context, userID string) (*db.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrUserNotFound
		}
		return nil, err
	}
	switch user.Status {
	case db.StatusSuspended:
		return nil, svcErr.ErrSuspended
	case db.StatusApproved:
		return user, nil
	default:
		return nil, svcErr.ErrNotApproved
	}
}

// Get loads an account regardless of status, for the profile endpoint.
func (s *Service) Get(ctx context.Context, userID string) (*db.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Approve flips a pending account to approved. Admin only (enforced by the
// route middleware).
func (s *Service) Approve(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateStatus(ctx, userID, db.StatusApproved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.ErrUserNotFound
		}
		return err
	}
	s.appCtx.Logger.Info("user approved", "user_id", userID)
	return nil
}

// Suspend locks an account out of login and all gated operations.
func (s *Service) Suspend(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateStatus(ctx, userID, db.StatusSuspended); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.ErrUserNotFound
		}
		return err
	}
	s.appCtx.Logger.Info("user suspended", "user_id", userID)
	return nil
}
