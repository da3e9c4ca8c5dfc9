// Package access описывает маршруты клиентского приложения и правила доступа к ним.
//
// Resolve по пути и состоянию сессии решает, что должен сделать клиент:
// показать экран, подождать восстановления сессии, перейти на /login,
// показать требование подтвердить почту, отказать в доступе или показать 404.
// Те же правила применяют HTTP middleware к группам API.
package access

import (
	"errors"
	"strings"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Guard требование маршрута к сессии.
type Guard int

// Требования к сессии.
const (
	Public Guard = iota
	Authenticated
	Verified
	Admin
)

// Route маршрут клиентского приложения.
type Route struct {
	Path  string `json:"path"`
	View  string `json:"view"`
	Guard Guard  `json:"guard"`
}

// Routes возвращает поверхность маршрутов приложения.
func Routes() []Route {
	return []Route{
		{Path: "/", View: "home", Guard: Public},
		{Path: "/login", View: "login", Guard: Public},
		{Path: "/signup", View: "signup", Guard: Public},
		{Path: "/risk-check", View: "risk-check", Guard: Verified},
		{Path: "/pricing", View: "pricing", Guard: Public},
		{Path: "/contact", View: "contact", Guard: Public},
		{Path: "/dashboard", View: "dashboard", Guard: Authenticated},
		{Path: "/admin", View: "admin", Guard: Admin},
	}
}

// Action действие клиента по результату проверки.
type Action string

// Действия клиента.
const (
	ActionRender               Action = "render"
	ActionPending              Action = "pending"
	ActionRedirect             Action = "redirect"
	ActionVerificationRequired Action = "verification_required"
	ActionForbidden            Action = "forbidden"
	ActionNotFound             Action = "not_found"
)

// LoginPath путь, на который уводят неаутентифицированного клиента.
const LoginPath = "/login"

// Decision решение по маршруту.
type Decision struct {
	Action   Action `json:"action"`
	View     string `json:"view,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Lookup находит маршрут по пути. Завершающий слэш игнорируется.
func Lookup(path string) (Route, bool) {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		path = "/"
	}
	for _, r := range Routes() {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve применяет правила доступа маршрута к состоянию сессии.
func Resolve(path string, state models.SessionState) Decision {
	route, ok := Lookup(path)
	if !ok {
		return Decision{Action: ActionNotFound, View: "not-found"}
	}
	if route.Guard == Public {
		return Decision{Action: ActionRender, View: route.View}
	}
	if err := Check(route.Guard, state); err != nil {
		return decisionFor(err, route)
	}
	return Decision{Action: ActionRender, View: route.View}
}

// ErrPending сообщает, что сессия ещё восстанавливается.
var ErrPending = errors.New("session is loading")

// Check проверяет требование guard и возвращает доменную ошибку при отказе:
// ErrPending, models.ErrUnauthenticated, models.ErrNotVerified или models.ErrForbidden.
func Check(guard Guard, state models.SessionState) error {
	if guard == Public {
		return nil
	}
	if state.Loading {
		return ErrPending
	}
	if state.User == nil {
		return models.ErrUnauthenticated
	}
	switch guard {
	case Verified:
		if !state.User.IsVerified {
			return models.ErrNotVerified
		}
	case Admin:
		if !state.User.IsAdmin() {
			return models.ErrForbidden
		}
	}
	return nil
}

func decisionFor(err error, route Route) Decision {
	switch err {
	case ErrPending:
		return Decision{Action: ActionPending, View: route.View}
	case models.ErrUnauthenticated:
		return Decision{Action: ActionRedirect, Redirect: LoginPath}
	case models.ErrNotVerified:
		return Decision{Action: ActionVerificationRequired, View: "verify-email"}
	default:
		return Decision{Action: ActionForbidden, View: route.View}
	}
}
