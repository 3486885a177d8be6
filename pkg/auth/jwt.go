package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are embedded in every session token. The token ID doubles as the
// session key in the session store.
type Claims struct {
	FuncionarioID int64  `json:"fun_id"`
	Rut           string `json:"rut"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewManager(secret, issuer string, expiry time.Duration) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

func (m *Manager) Expiry() time.Duration {
	return m.expiry
}

// Issue signs a token for the funcionario and returns it with its claims.
func (m *Manager) Issue(funcionarioID int64, rut string) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		FuncionarioID: funcionarioID,
		Rut:           rut,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", funcionarioID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, claims, nil
}

func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
