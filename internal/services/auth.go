package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/requestdata"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*types.User, error)
	// Login verifies credentials, runs the access bootstrap, and issues an
	// access token plus a refresh token.
	Login(ctx context.Context, email, password string) (string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// SetContextFromToken validates an access token and attaches the request
	// identity to the context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	bootstrap     BootstrapService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	bootstrap BootstrapService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		bootstrap:     bootstrap,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) Register(ctx context.Context, email, password, displayName string) (*types.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("register: email and password required: %w", errors.ErrInvalidArgument)
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("register: email check: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register: email already in use: %w", errors.ErrInvalidArgument)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	// bootstrap provisions the profile with whitelist-derived role and
	// enrollment; the password is attached afterwards in the same flow
	user, err := as.bootstrap.Bootstrap(ctx, email, displayName, false)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	user.Password = string(hashed)
	if displayName != "" {
		user.DisplayName = displayName
	}
	if err := as.userRepo.Save(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("register: save: %w", err)
	}
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", "", fmt.Errorf("login: %w", errors.ErrInvalidArgument)
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("login: lookup: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("login: %w", errors.ErrUnauthorized)
	}
	user := users[0]
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", "", fmt.Errorf("login: %w", errors.ErrUnauthorized)
	}

	// every sign-in reconciles whitelist/admin/enrollment
	user, err = as.bootstrap.Bootstrap(ctx, email, user.DisplayName, user.IsAdmin)
	if err != nil {
		return "", "", fmt.Errorf("login: bootstrap: %w", err)
	}

	return as.issueTokens(ctx, user)
}

func (as *authService) issueTokens(ctx context.Context, user *types.User) (string, string, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("issue access token: %w", err)
	}

	refresh := uuid.New().String()
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteExpired(ctx, tx, time.Now()); err != nil {
			return err
		}
		return as.userTokenRepo.Create(ctx, tx, &types.UserToken{
			UserID:       user.ID,
			RefreshToken: refresh,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		})
	})
	if err != nil {
		return "", "", fmt.Errorf("issue refresh token: %w", err)
	}
	return access, refresh, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	row, err := as.userTokenRepo.GetByToken(ctx, nil, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("refresh: lookup: %w", err)
	}
	if row == nil || row.ExpiresAt.Before(time.Now()) {
		return "", "", fmt.Errorf("refresh: %w", errors.ErrUnauthorized)
	}

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{row.UserID})
	if err != nil || len(users) == 0 {
		return "", "", fmt.Errorf("refresh: user lookup: %w", errors.ErrUnauthorized)
	}

	// rotate: old token is spent regardless of what happens next
	if err := as.userTokenRepo.DeleteByToken(ctx, nil, refreshToken); err != nil {
		return "", "", fmt.Errorf("refresh: rotate: %w", err)
	}
	return as.issueTokens(ctx, users[0])
}

func (as *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := as.userTokenRepo.DeleteByUserID(ctx, nil, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

type accessClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := accessClaims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token: %w", errors.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject: %w", errors.ErrUnauthorized)
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       claims.Email,
		IsAdmin:     claims.IsAdmin,
	}), nil
}
