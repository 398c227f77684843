package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

// Claims identify the sender of a request: the base58 Ed25519 key the
// bearer acts as.
type Claims struct {
	Sender string `json:"sender"`
	jwt.RegisteredClaims
}

// JWTService handles sender token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateSenderToken issues an HS256 token for sender.
func (s *JWTService) GenerateSenderToken(sender domain.PublicKey, expiresIn time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Sender: sender.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sender.DID(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ExtractSender validates the token and parses its sender key.
func (s *JWTService) ExtractSender(tokenString string) (domain.PublicKey, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return domain.PublicKey{}, err
	}
	sender, err := domain.ParsePublicKey(claims.Sender)
	if err != nil {
		return domain.PublicKey{}, dErrors.New(dErrors.CodeUnauthorized, "invalid sender claim")
	}
	return sender, nil
}
