package middleware

import (
	"net/http"

	"github.com/medbook/auth-service/internal/auth"
	"github.com/medbook/auth-service/internal/config"
	"github.com/medbook/auth-service/internal/transport/http/cookies"
)

// Authenticate разрешает токены запроса в auth.Context и кладёт его в контекст.
//
// Ошибок не возвращает: без валидных токенов дальше едет анонимный контекст,
// а требования к уровню доступа проверяют хендлеры. Если guard выпустил новый
// access-токен по refresh-токену, cookie переустанавливается здесь же.
func Authenticate(g *auth.Guard, ck config.CookieConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessToken, refreshToken := cookies.Read(r)

			authCtx, issued := g.Resolve(r.Context(), accessToken, refreshToken)
			if issued != nil {
				cookies.SetAccess(w, ck, issued)
			}

			next.ServeHTTP(w, r.WithContext(auth.IntoContext(r.Context(), authCtx)))
		})
	}
}
