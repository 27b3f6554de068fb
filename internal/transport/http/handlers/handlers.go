package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/medbook/auth-service/internal/auth"
	"github.com/medbook/auth-service/internal/config"
	"github.com/medbook/auth-service/internal/models"
	"github.com/medbook/auth-service/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	Service *service.Service
	Cookies config.CookieConfig
}

func New(svc *service.Service, ck config.CookieConfig) *Handlers {
	return &Handlers{Service: svc, Cookies: ck}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidBody возвращается на любой дефект JSON-тела: неизвестные поля,
// синтаксис, пустое тело. Текст один, детали парсера наружу не отдаём.
func errInvalidBody() error {
	return &service.ValidationError{Field: "body", Message: "invalid request body"}
}

// identityView — представление личности запроса для клиента.
type identityView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toIdentityView(i *auth.Identity) identityView {
	return identityView{
		ID:    i.UserID.String(),
		Email: i.Email,
		Role:  i.Role,
	}
}

// userView — публичное представление пользователя. Хеш пароля и прочие
// внутренние поля наружу не выходят.
type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
