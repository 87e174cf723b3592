package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/email"
	"lifesync-engine/internal/repository"
	"lifesync-engine/internal/validators"
)

// resetTokenTTL es la vigencia del token de reseteo de contrasena.
const resetTokenTTL = time.Hour

// AuthService coordina registro, login y reseteo de contrasena.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	jwt         *JWTService
	emailSender email.Sender
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, profiles repository.ProfileRepository, jwt *JWTService, emailSender email.Sender) *AuthService {
	return &AuthService{
		logger:      logger,
		users:       users,
		profiles:    profiles,
		jwt:         jwt,
		emailSender: emailSender,
	}
}

// AuthResult agrupa el usuario y sus tokens tras signup o login.
type AuthResult struct {
	User   domain.User `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

// SignUp registra un usuario nuevo, crea su perfil vacio y deja la sesion
// iniciada.
func (s *AuthService) SignUp(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	normalized, err := validators.Email(emailAddr)
	if err != nil {
		return AuthResult{}, err
	}
	if err := validators.Password(password); err != nil {
		return AuthResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}
	if err := s.profiles.Upsert(ctx, user.ID, user.Email, ""); err != nil {
		s.logger.Warn("profile creation failed on signup",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	tokens, err := s.jwt.GeneratePair(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return AuthResult{User: user, Tokens: tokens}, nil
}

// SignIn autentica por email y contrasena. Cualquier fallo devuelve el
// mismo error generico para no revelar si la cuenta existe.
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	normalized, err := validators.Email(emailAddr)
	if err != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	tokens, err := s.jwt.GeneratePair(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh rota el par de tokens a partir de un refresh vigente.
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	return s.jwt.RefreshPair(refreshToken)
}

// SignOut revoca el refresh token de la sesion.
func (s *AuthService) SignOut(refreshToken string) error {
	return s.jwt.RevokeRefresh(refreshToken)
}

// RequestPasswordReset genera un token de un solo uso y lo envia por
// correo. Siempre responde igual, exista o no la cuenta.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	normalized, err := validators.Email(emailAddr)
	if err != nil {
		return nil
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, tokenHash, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, tokenHash, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return err
	}
	if s.emailSender != nil {
		if err := s.emailSender.SendPasswordReset(ctx, user.Email, token); err != nil {
			s.logger.Warn("reset email failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// ConfirmPasswordReset canjea el token recibido por correo y fija la nueva
// contrasena.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := validators.Password(newPassword); err != nil {
		return err
	}
	user, err := s.users.FindByResetToken(ctx, hashToken(token))
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

// newResetToken devuelve el token en claro para el mail y su hash para la
// base. El claro nunca se persiste.
func newResetToken() (token, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(raw)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
