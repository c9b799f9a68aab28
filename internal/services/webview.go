package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crediflow/los-backend/internal/data/repos"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/utils"
)

// WebViewSession is a short-lived token handed to an embedded web view.
// The token is bound to one application, screen and field so a leaked
// token cannot be replayed elsewhere.
type WebViewSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type WebViewClaims struct {
	ApplicationID string `json:"applicationId"`
	ScreenID      string `json:"screenId"`
	FieldID       string `json:"fieldId"`
	jwt.RegisteredClaims
}

type WebViewService interface {
	// Init verifies the application exists and mints a session token.
	Init(ctx context.Context, applicationID uuid.UUID, screenID, fieldID string) (*WebViewSession, error)
	// Verify parses a token and returns its claims, rejecting expired or
	// tampered tokens with ErrUnauthorized.
	Verify(token string) (*WebViewClaims, error)
}

type webViewService struct {
	log     *logger.Logger
	appRepo repos.ApplicationRepo
	secret  []byte
	ttl     time.Duration
}

func NewWebViewService(baseLog *logger.Logger, appRepo repos.ApplicationRepo) WebViewService {
	log := baseLog.With("service", "WebViewService")
	secret := utils.GetEnv("WEBVIEW_JWT_SECRET", "", log)
	if secret == "" {
		log.Warn("WEBVIEW_JWT_SECRET not set, using ephemeral secret; tokens will not survive restarts")
		secret = uuid.NewString()
	}
	ttl := time.Duration(utils.GetEnvAsInt("WEBVIEW_TOKEN_TTL_SECONDS", 300, log)) * time.Second
	return &webViewService{
		log:     log,
		appRepo: appRepo,
		secret:  []byte(secret),
		ttl:     ttl,
	}
}

func (s *webViewService) Init(ctx context.Context, applicationID uuid.UUID, screenID, fieldID string) (*WebViewSession, error) {
	if screenID == "" || fieldID == "" {
		return nil, fmt.Errorf("screenId and fieldId are required: %w", apperrors.ErrInvalidArgument)
	}
	app, err := s.appRepo.GetByID(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.ttl)
	claims := &WebViewClaims{
		ApplicationID: app.ID.String(),
		ScreenID:      screenID,
		FieldID:       fieldID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   app.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign webview token: %w", err)
	}

	s.log.Info("webview session issued", "application_id", app.ID,
		"screen_id", screenID, "field_id", fieldID)
	return &WebViewSession{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *webViewService) Verify(token string) (*WebViewClaims, error) {
	claims := &WebViewClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid webview token: %w", apperrors.ErrUnauthorized)
	}
	return claims, nil
}
