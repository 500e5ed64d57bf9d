// Package api exposes the exchange over JSON HTTP. Every authenticated route
// passes the token's user ID to the exchange as the acting user.
package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/reclaim/internal/auth"
	"github.com/erazemk/reclaim/internal/exchange"
)

// Options tunes the router. Zero values use the defaults.
type Options struct {
	EmailDomain    string
	TokenTTL       time.Duration
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// DefaultMaxUploadBytes bounds an image upload when no limit is configured.
const DefaultMaxUploadBytes = 5 << 20

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	tokens := auth.NewTokens(jwtSecret, opts.TokenTTL)
	ex := exchange.New(opts.Logger, db, nil)

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Tokens: tokens, EmailDomain: opts.EmailDomain}
	itemsHandler := &ItemsHandler{Exchange: ex}
	requestsHandler := &RequestsHandler{Exchange: ex}
	imagesHandler := &ImagesHandler{DB: db, Exchange: ex, MaxBytes: opts.MaxUploadBytes}

	authMW := AuthMiddleware(tokens, db)
	protect := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: register and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Session.
	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))
	mux.Handle("GET /api/auth/me", protect(authHandler.Me))
	mux.Handle("PUT /api/auth/password", protect(authHandler.ChangePassword))

	// Items.
	mux.Handle("GET /api/items", protect(itemsHandler.List))
	mux.Handle("POST /api/items", protect(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", protect(itemsHandler.Get))
	mux.Handle("POST /api/items/{id}/return", protect(itemsHandler.MarkReturned))
	mux.Handle("GET /api/items/{id}/requests", protect(itemsHandler.ListRequests))
	mux.Handle("POST /api/items/{id}/requests", protect(itemsHandler.SubmitClaim))
	mux.Handle("GET /api/items/{id}/history", protect(itemsHandler.History))

	// Claim requests and their chat.
	mux.Handle("GET /api/requests", protect(requestsHandler.Inbox))
	mux.Handle("POST /api/requests/{id}/accept", protect(requestsHandler.Accept))
	mux.Handle("POST /api/requests/{id}/reject", protect(requestsHandler.Reject))
	mux.Handle("GET /api/requests/{id}/messages", protect(requestsHandler.Messages))
	mux.Handle("POST /api/requests/{id}/messages", protect(requestsHandler.SendMessage))

	// Images.
	mux.Handle("POST /api/images", protect(imagesHandler.Upload))
	mux.Handle("GET /api/images/{ref}", protect(imagesHandler.Get))

	return mux
}
