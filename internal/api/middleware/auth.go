package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

const (
	// HeaderUserID ID пользователя, проставляется API-шлюзом после аутентификации
	HeaderUserID = "X-User-ID"
	// HeaderUserRole роль пользователя: client, practitioner или admin
	HeaderUserRole = "X-User-Role"

	msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"
	msgInvalidRole   = "отсутствует или некорректен заголовок X-User-Role"
)

type actorKey struct{}

// Auth доверяет заголовкам шлюза и кладет пользователя в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		role := domain.UserRole(r.Header.Get(HeaderUserRole))
		if !role.IsValid() {
			handlers.RespondUnauthorized(w, msgInvalidRole)
			return
		}

		ctx := WithActor(r.Context(), domain.Actor{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithActor кладет пользователя в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor возвращает пользователя из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	actor, ok := GetActor(ctx)
	return actor.UserID, ok
}
