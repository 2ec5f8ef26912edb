package authjwt

import (
	"errors"
	"fmt"
	"time"

	authdomain "github.com/Black-And-White-Club/shared-dice/app/modules/auth/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// provider implements the Provider interface with HS256.
type provider struct {
	secret []byte
	issuer string
}

// NewProvider creates a new JWT provider. Tokens from other issuers are
// rejected when issuer is set.
func NewProvider(secret, issuer string) Provider {
	return &provider{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (p *provider) GenerateToken(domainClaims *authdomain.Claims, ttl time.Duration) (string, error) {
	if domainClaims == nil || domainClaims.ParticipantID == "" {
		return "", fmt.Errorf("%w: missing participant", ErrInvalidToken)
	}
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    p.issuer,
		Subject:   string(domainClaims.ParticipantID),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (p *provider) ValidateToken(tokenString string) (*authdomain.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	domainClaims := &authdomain.Claims{
		ParticipantID: participantdomain.ID(claims.Subject),
		TokenID:       claims.ID,
		Issuer:        claims.Issuer,
	}
	if claims.ExpiresAt != nil {
		domainClaims.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		domainClaims.IssuedAt = claims.IssuedAt.Time
	}

	return domainClaims, nil
}
