package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "maintenance-system/pkg/errors"
)

type JwtCustomClaim struct {
	UserID         uint64  `json:"userId"`
	Role           string  `json:"role"`
	TechnicianID   *uint64 `json:"technicianId,omitempty"`
	IsRefreshToken bool    `json:"isRefreshToken"`
	jwt.RegisteredClaims
}

// TokenSubject - данные пользователя, которые кладутся в токен.
type TokenSubject struct {
	UserID       uint64
	Role         string
	TechnicianID *uint64
}

type JWTService interface {
	GenerateTokens(subject TokenSubject) (string, string, error)
	ValidateToken(tokenString string) (*JwtCustomClaim, error)
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type jwtService struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	logger          *zap.Logger
}

func NewJWTService(secretKey string, accessTokenExp, refreshTokenExp time.Duration, logger *zap.Logger) JWTService {
	return &jwtService{
		SecretKey:       secretKey,
		AccessTokenExp:  accessTokenExp,
		RefreshTokenExp: refreshTokenExp,
		logger:          logger,
	}
}

func (service *jwtService) GenerateTokens(subject TokenSubject) (string, string, error) {
	now := time.Now()

	accessToken, err := service.sign(subject, false, now, now.Add(service.AccessTokenExp))
	if err != nil {
		return "", "", err
	}

	refreshToken, err := service.sign(subject, true, now, now.Add(service.RefreshTokenExp))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (service *jwtService) sign(subject TokenSubject, refresh bool, issuedAt, expiresAt time.Time) (string, error) {
	claims := &JwtCustomClaim{
		UserID:         subject.UserID,
		Role:           subject.Role,
		TechnicianID:   subject.TechnicianID,
		IsRefreshToken: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString([]byte(service.SecretKey))
}

func (s *jwtService) GetAccessTokenTTL() time.Duration {
	return s.AccessTokenExp
}

func (s *jwtService) GetRefreshTokenTTL() time.Duration {
	return s.RefreshTokenExp
}

func (service *jwtService) ValidateToken(tokenString string) (*JwtCustomClaim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaim{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(service.SecretKey), nil
		default:
			return nil, apperrors.ErrInvalidSigningMethod
		}
	})

	if err != nil {
		service.logger.Debug("Ошибка парсинга или проверки подписи токена", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			return nil, apperrors.ErrTokenNotYetValid
		case errors.Is(err, apperrors.ErrInvalidSigningMethod):
			return nil, apperrors.ErrInvalidSigningMethod
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok || !token.Valid {
		service.logger.Warn("Токен невалиден или не удалось извлечь claims")
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
