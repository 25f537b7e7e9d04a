package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTypeSession = "session"

type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Session struct {
	ID        uuid.UUID
	Token     string
	ExpiresAt time.Time
}

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager инициализирует менеджер токенов сессий.
func NewTokenManager(secret string, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// NewSession создает анонимную сессию и подписанный токен для нее.
func (m *TokenManager) NewSession() (Session, error) {
	sessionID := uuid.New()
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		TokenType: tokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   sessionID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Session{}, err
	}

	return Session{ID: sessionID, Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseSession валидирует токен и возвращает идентификатор сессии.
func (m *TokenManager) ParseSession(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithIssuer(m.issuer))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	if !token.Valid {
		return uuid.Nil, errors.New("token is invalid")
	}

	if claims.TokenType != tokenTypeSession {
		return uuid.Nil, errors.New("token type mismatch")
	}

	return uuid.Parse(claims.Subject)
}
