package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/middleware"
)

// NewRouter mounts the backend contract's four endpoints with request
// logging.
//
// Routes:
//
//	GET  /get_users               → Handler.GetUsers
//	POST /send_verification_code  → Handler.SendVerificationCode
//	POST /up_user                 → Handler.UpUser
//	PUT  /update_user             → Handler.UpdateUser
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/get_users", h.GetUsers)
	r.Post("/send_verification_code", h.SendVerificationCode)
	r.Post("/up_user", h.UpUser)
	r.Put("/update_user", h.UpdateUser)

	return r
}
