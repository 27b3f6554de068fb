// cookies — транспортировка токенов в HTTP-cookie.
//
// Access- и refresh-токены ездят в раздельных httpOnly-cookie; maxAge каждой
// совпадает со сроком жизни токена. Secure и SameSite задаются конфигурацией
// деплоя: lax для same-site, none (+Secure) для cross-site.
// Для access-токена дополнительно принимается заголовок Authorization: Bearer.
package cookies

import (
	"net/http"
	"strings"
	"time"

	"github.com/medbook/auth-service/internal/config"
	"github.com/medbook/auth-service/internal/models"
)

// Имена cookie фиксированы: клиенты считают их контрактом.
const (
	AccessName  = "access_token"
	RefreshName = "refresh_token"
)

func sameSite(cfg config.CookieConfig) http.SameSite {
	if cfg.SameSite == "none" {
		return http.SameSiteNoneMode
	}

	return http.SameSiteLaxMode
}

func set(w http.ResponseWriter, cfg config.CookieConfig, name, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: sameSite(cfg),
	})
}

// SetPair устанавливает обе cookie для свежевыпущенной пары токенов.
func SetPair(w http.ResponseWriter, cfg config.CookieConfig, pair *models.TokenPair) {
	set(w, cfg, AccessName, pair.AccessToken, pair.AccessExpiresAt)
	set(w, cfg, RefreshName, pair.RefreshToken, pair.RefreshExpiresAt)
}

// SetAccess переустанавливает access-cookie (после обновления по refresh-токену).
func SetAccess(w http.ResponseWriter, cfg config.CookieConfig, token *models.AccessToken) {
	set(w, cfg, AccessName, token.Token, token.ExpiresAt)
}

// Clear сбрасывает обе cookie (logout).
func Clear(w http.ResponseWriter, cfg config.CookieConfig) {
	for _, name := range []string{AccessName, RefreshName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: sameSite(cfg),
		})
	}
}

// Read достаёт токены из запроса. Отсутствующий токен — пустая строка,
// это не ошибка: не всем операциям нужна аутентификация.
func Read(r *http.Request) (accessToken, refreshToken string) {
	if c, err := r.Cookie(AccessName); err == nil {
		accessToken = c.Value
	}

	// Header-based деплой: Bearer эквивалентен access-cookie.
	if accessToken == "" {
		const prefix = "Bearer "
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
			accessToken = strings.TrimSpace(h[len(prefix):])
		}
	}

	if c, err := r.Cookie(RefreshName); err == nil {
		refreshToken = c.Value
	}

	return accessToken, refreshToken
}
