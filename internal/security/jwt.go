package security

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/util"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

type Claims struct {
	UserUUID string   `json:"user_uuid"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTService подписывает и проверяет access-токены.
// Состояния не имеет: всё, что нужно, — ключ подписи и TTL из конфигурации.
type JWTService struct {
	signingKey     []byte
	issuer         string
	audience       string
	accessTokenTTL time.Duration
}

// NewJWTService валидирует конфигурацию один раз при старте:
// пустой ключ или нечитаемый TTL — фатальная ошибка конфигурации, не ошибка запроса
func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("не задан ключ подписи access-токенов")
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга access_token_ttl: %w", err)
	}

	return &JWTService{
		signingKey:     []byte(cfg.SigningKey),
		issuer:         cfg.Issuer,
		audience:       cfg.Audience,
		accessTokenTTL: accessTTL,
	}, nil
}

// IssueAccessToken подписывает короткоживущий токен со снапшотом пользователя и его ролей
func (service *JWTService) IssueAccessToken(user *model.User) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserUUID: user.UUID,
		Email:    user.Email,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTokenTTL)),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := jwtToken.SignedString(service.signingKey)
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}

	return accessToken, nil
}

func (service *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return service.signingKey, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithAudience(service.audience))

	if err != nil || !jwtToken.Valid {
		return nil, util.LogError("невалидный токен", err)
	}

	return claims, nil
}

func JWTMiddleware(jwtService *JWTService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			claims, err := jwtService.ValidateJWT(token)
			if err != nil {
				log.Printf("невалидный токен: %v", err)
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
			next.ServeHTTP(writer, req)
		})
	}
}

// RequireRole пускает дальше только пользователей с нужной ролью
func RequireRole(role string) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims, err := GetClaimsFromContext(request.Context())
			if err != nil {
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, r := range claims.Roles {
				if r == role {
					next.ServeHTTP(writer, request)
					return
				}
			}

			http.Error(writer, "forbidden", http.StatusForbidden)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}
