package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ticketly/internal/shared/apperr"
	"ticketly/internal/shared/config"
)

type Service interface {
	Login(ctx context.Context, req *LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
}

type service struct {
	repo Repository
	cfg  *config.Config
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{repo: repo, cfg: cfg}
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, apperr.New(apperr.KindInvalidInput, "invalid credentials")
	}
	if !user.Active {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid credentials")
	}

	return s.issueTokens(user)
}

func (s *service) Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid refresh token")
	}
	userID, err := uuid.Parse(fmt.Sprint(claims["user_id"]))
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid refresh token")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid refresh token")
	}
	if !user.Active {
		return nil, apperr.New(apperr.KindInvalidInput, "account is disabled")
	}

	return s.issueTokens(user)
}

func (s *service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) issueTokens(user *User) (*TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"type":    "access",
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.JWT.JWTExpiresIn).Unix(),
	})
	accessToken, err := access.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"type":    "refresh",
		"user_id": user.ID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.JWT.RefreshExpiresIn).Unix(),
	})
	refreshToken, err := refresh.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.JWTExpiresIn.Seconds()),
	}, nil
}
