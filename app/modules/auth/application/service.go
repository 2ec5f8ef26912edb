package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authdomain "github.com/Black-And-White-Club/shared-dice/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/shared-dice/app/modules/auth/infrastructure/jwt"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTTL = 24 * time.Hour

// AuthService implements the Service interface.
type AuthService struct {
	jwtProvider authjwt.Provider
	directory   Directory
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a new auth service.
func NewService(jwtProvider authjwt.Provider, directory Directory, config Config, logger *slog.Logger, tracer trace.Tracer) *AuthService {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		jwtProvider: jwtProvider,
		directory:   directory,
		config:      config,
		logger:      logger,
		tracer:      tracer,
	}
}

func (s *AuthService) IssueToken(ctx context.Context, participantID participantdomain.ID, ttl time.Duration) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueToken", trace.WithAttributes(
		attribute.String("participant_id", string(participantID)),
	))
	defer span.End()

	if _, err := s.directory.Get(ctx, participantID); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}

	token, err := s.jwtProvider.GenerateToken(&authdomain.Claims{ParticipantID: participantID}, ttl)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %w", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Issued participant token",
		attr.ParticipantID(string(participantID)),
		attr.Duration("ttl", ttl),
	)
	return token, nil
}

func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, authjwt.ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.ParticipantID != s.directory.SelfID() {
		s.logger.WarnContext(ctx, "Rejected token of another participant",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(string(claims.ParticipantID)),
		)
		return nil, ErrWrongParticipant
	}
	return claims, nil
}

var _ Service = (*AuthService)(nil)
