package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hamzamohiuddin1/msaconnect/internal/config"
	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"
	"github.com/hamzamohiuddin1/msaconnect/internal/user"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// unconfirmed accounts alike, so a caller cannot probe which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("user already exists with this email")
	ErrInvalidDomain      = errors.New("email must be an institutional address")
	ErrInvalidToken       = errors.New("confirmation link is invalid or has expired")
)

const confirmationTokenTTL = 24 * time.Hour

// Mailer sends account emails. Dispatch is always fire-and-forget: the
// service logs failures and never surfaces them to the caller.
type Mailer interface {
	SendConfirmation(ctx context.Context, to, name, token string) error
}

type Service struct {
	repo    user.Repository
	mailer  Mailer
	cfg     config.AuthConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(repo user.Repository, mailer Mailer, cfg config.AuthConfig, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		mailer:  mailer,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// Register creates a new account. Depending on configuration the account is
// either auto-confirmed and handed a token immediately, or left unconfirmed
// until the emailed confirmation token is exchanged.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.HasSuffix(email, s.cfg.EmailDomain) {
		return nil, ErrInvalidDomain
	}

	if existing, _ := s.repo.GetByEmail(ctx, email); existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &user.User{
		Name:             strings.TrimSpace(req.Name),
		Email:            email,
		Password:         string(hashedPassword),
		PhoneNumber:      strings.TrimSpace(req.PhoneNumber),
		Major:            strings.TrimSpace(req.Major),
		Year:             req.Year,
		Gender:           req.Gender,
		GenderPreference: req.GenderPreference,
		IsEmailConfirmed: !s.cfg.RequireEmailConfirmation,
	}

	var confirmationToken string
	if s.cfg.RequireEmailConfirmation {
		confirmationToken, err = generateConfirmationToken()
		if err != nil {
			return nil, err
		}
		newUser.EmailConfirmationToken = confirmationToken
		newUser.EmailConfirmationExpires = time.Now().Add(confirmationTokenTTL)
	}

	created, err := s.repo.Create(ctx, newUser)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordUserRegistered(ctx)

	if s.cfg.RequireEmailConfirmation {
		if s.mailer == nil {
			s.logger.Warn("no mailer configured, confirmation email not sent", "email", created.Email)
			return &AuthResponse{
				Message: "Registration successful. Please check your email to confirm your account.",
				User:    created,
			}, nil
		}

		// The response must not wait on the email provider.
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mailer.SendConfirmation(sendCtx, created.Email, created.Name, confirmationToken); err != nil {
				s.logger.Error("failed to send confirmation email", "email", created.Email, "error", err)
				s.metrics.RecordEmailFailed(sendCtx)
				return
			}
			s.metrics.RecordEmailSent(sendCtx)
		}()

		return &AuthResponse{
			Message: "Registration successful. Please check your email to confirm your account.",
			User:    created,
		}, nil
	}

	token, err := GenerateToken(created.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Message: "User registered successfully. You can now start using the app!",
		Token:   token,
		User:    created,
	}, nil
}

// Login authenticates a user and returns a bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if s.cfg.RequireEmailConfirmation && !u.IsEmailConfirmed {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(u.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(ctx)

	return &AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    u,
	}, nil
}

// ConfirmEmail exchanges a confirmation token. The token is single-use: the
// repository clears it as part of marking the account confirmed, so a second
// exchange of the same token fails.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	u, err := s.repo.GetByConfirmationToken(ctx, token)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.repo.ConfirmEmail(ctx, u.ID); err != nil {
		return err
	}

	s.metrics.RecordUserConfirmed(ctx)
	s.logger.Info("email confirmed", "email", u.Email)
	return nil
}

// GetCurrentUser loads the authenticated user.
func (s *Service) GetCurrentUser(ctx context.Context, userID int) (*user.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial profile update. Email and gender are not
// updatable.
func (s *Service) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Major != nil {
		u.Major = strings.TrimSpace(*req.Major)
	}
	if req.Year != nil {
		u.Year = *req.Year
	}
	if req.GenderPreference != nil {
		u.GenderPreference = *req.GenderPreference
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func generateConfirmationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
