// Package routes is the HTTP surface. Handlers return *AppError; the
// AppHandler adapter renders the error body and logs the cause, so the
// handlers themselves stay free of logging and status plumbing.
package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gitlab.com/bisikapp/bisik/internal/content"
	"gitlab.com/bisikapp/bisik/internal/engagement"
	"gitlab.com/bisikapp/bisik/internal/feed"
	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/moderation"
)

// AppError is what a handler returns on failure. Code is the HTTP status,
// ErrCode the machine-readable tag for clients that branch on it, Message
// the user-facing text (Indonesian, like the rest of the product). Cause
// is only ever logged.
type AppError struct {
	Message string
	Code    int
	ErrCode string
	Cause   error
}

func AppHandler(handler func(w http.ResponseWriter, r *http.Request) *AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appErr := handler(w, r)
		if appErr == nil {
			return
		}
		if appErr.Code == 0 {
			appErr.Code = http.StatusInternalServerError
		}
		if appErr.Message == "" {
			appErr.Message = "Terjadi kesalahan pada server."
		}

		evt := hlog.FromRequest(r).Error().
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", appErr.Code)
		if appErr.ErrCode != "" {
			evt = evt.Str("code", appErr.ErrCode)
		}
		evt.Err(appErr.Cause).Msg(appErr.Message)

		body := map[string]interface{}{
			"success": false,
			"message": appErr.Message,
		}
		if appErr.ErrCode != "" {
			body["code"] = appErr.ErrCode
		}
		renderJSON(w, appErr.Code, body)
	}
}

func renderJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderData(w http.ResponseWriter, status int, v interface{}) {
	renderJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    v,
	})
}

// appError maps the service sentinels onto HTTP statuses and the
// product's user-facing messages.
func appError(err error) *AppError {
	switch err {
	case models.ErrNotFound:
		return &AppError{Code: http.StatusNotFound, Message: "Konten tidak ditemukan.", Cause: err}
	case models.ErrMissingFields:
		return &AppError{Code: http.StatusBadRequest, Message: "Data belum lengkap.", Cause: err}
	case models.ErrContentTooLong:
		return &AppError{Code: http.StatusBadRequest, Message: "Konten terlalu panjang.", Cause: err}
	case models.ErrMetaMismatch:
		return &AppError{Code: http.StatusBadRequest, Message: "Format konten tidak sesuai.", Cause: err}
	case models.ErrInvalidTargetType, models.ErrInvalidReason, models.ErrUnknownAction:
		return &AppError{Code: http.StatusBadRequest, Message: "Permintaan tidak valid.", Cause: err}
	case models.ErrSpamRejected:
		return &AppError{
			Code:    http.StatusBadRequest,
			ErrCode: "SPAM_DETECTED",
			Message: "Maaf, hindari nomor/link/alamat lengkap ya. Biar tetap anonim.",
			Cause:   err,
		}
	case models.ErrRateLimited:
		return &AppError{Code: http.StatusTooManyRequests, Message: "Tunggu sebentar lagi sebelum posting baru.", Cause: err}
	case models.ErrBanned:
		return &AppError{Code: http.StatusForbidden, Message: "Akun kamu telah diblokir karena melanggar aturan komunitas.", Cause: err}
	case models.ErrEditWindowExpired:
		return &AppError{Code: http.StatusForbidden, Message: "Waktu edit sudah habis.", Cause: err}
	case models.ErrSelfReport:
		return &AppError{Code: http.StatusBadRequest, Message: "Kamu tidak bisa melaporkan kontenmu sendiri.", Cause: err}
	default:
		return &AppError{Cause: err}
	}
}

// Routes bundles the services behind the HTTP surface.
type Routes struct {
	Content    *content.Service
	Feed       *feed.Composer
	Engagement *engagement.Service
	Moderation *moderation.Engine
}

// Router assembles the full chi router, middleware included.
func (routes *Routes) Router(logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Int("status", status).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Route("/posts", routes.PostsRouter)
	r.Route("/intel", routes.IntelRouter)
	r.Post("/report", AppHandler(routes.PostReport))
	return r
}
