package auth

import (
	"context"
	"net/http"

	"github.com/xela07ax/traveldesk/internal/domain"
	"go.uber.org/zap"
)

// Типизированный ключ контекста (избегаем коллизий со сторонними пакетами)
type ctxKey int

const actorKey ctxKey = iota

// ActorFromContext достает актора, положенного middleware.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// WithActor кладет актора в контекст; используется middleware и тестами хендлеров.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// NewMiddleware проверяет токен и кладет в контекст типизированного Actor.
// Роль из клеймов разбирается здесь же: внутрь системы нетипизированные
// строки не проходят.
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			role, err := domain.ParseUserRole(claims.Role)
			if err != nil {
				logger.Warn("token carries unknown role", zap.String("role", claims.Role))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor := domain.Actor{ID: claims.UserID, Role: role}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRoles пропускает только перечисленные роли. Вешается поверх
// NewMiddleware на административные группы роутов.
func RequireRoles(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
