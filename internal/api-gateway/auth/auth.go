package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims é o payload mínimo que o gateway propaga pros serviços internos
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier valida tokens HS256 e injeta a identidade nos headers internos.
// Os serviços atrás do gateway confiam em X-User-ID e X-User-Role, então
// qualquer valor vindo de fora é descartado antes do proxy.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier { return &Verifier{secret: []byte(secret)} }

// Parse valida o bearer token e devolve userID e role
func (v *Verifier) Parse(token string) (userID, role string, err error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Role, nil
}

// Middleware autentica a requisição e reescreve os headers de identidade
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del("X-User-ID")
		r.Header.Del("X-User-Role")

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		userID, role, err := v.Parse(raw)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		r.Header.Set("X-User-ID", userID)
		r.Header.Set("X-User-Role", role)
		next.ServeHTTP(w, r)
	})
}

// Issue emite um token HS256 com a identidade e validade dadas.
// Usado pelo endpoint de token do ambiente de demonstração.
func (v *Verifier) Issue(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
