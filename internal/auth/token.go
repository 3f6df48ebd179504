/* 인증 제공자가 발급한 JWT 검증 및 개발용 토큰 생성 */

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// 시크릿 미설정 시 개발용 기본 키
const DefaultDevSecret = "default_secret_key"

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrInvalidSubject = errors.New("token subject contains a path separator")
)

// Claims 인증 제공자 토큰 페이로드 (sub = 사용자 id)
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID sub 클레임
func (c *Claims) UserID() string {
	return c.Subject
}

type Manager struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewManager secret이 비어있으면 DefaultDevSecret 사용
func NewManager(secret, issuer string) *Manager {
	if secret == "" {
		secret = DefaultDevSecret
	}
	return &Manager{key: []byte(secret), issuer: issuer, ttl: 24 * time.Hour}
}

// GenerateToken 개발/테스트용 토큰 발급
func (m *Manager) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// ValidateToken HS256 서명, 만료, sub 검사
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	// sub는 저장 경로의 한 구간으로 쓰임
	if strings.ContainsAny(claims.Subject, `/\`) || claims.Subject == "." || claims.Subject == ".." {
		return nil, ErrInvalidSubject
	}
	return claims, nil
}
