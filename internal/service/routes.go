package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/familywallet/internal/auth"
	"github.com/mmynk/familywallet/internal/ledger"
	"github.com/mmynk/familywallet/internal/middleware"
	"github.com/mmynk/familywallet/internal/storage"
)

// Dependencies are the collaborators the wallet services are built from.
type Dependencies struct {
	Store         storage.Store
	Engine        *ledger.Engine
	Authenticator auth.Authenticator
	JWTManager    *auth.JWTManager
	Logger        *slog.Logger
}

// Mount registers every wallet service on mux.
func Mount(mux *http.ServeMux, d Dependencies) {
	common := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.LoggingInterceptor(),
	)
	requireAuth := middleware.RequireAuth(d.JWTManager, d.Store)
	authed := connect.WithInterceptors(requireAuth)

	mux.Handle(NewAuthServiceHandler(
		NewAuthService(d.Authenticator, d.JWTManager, d.Store, d.Logger), requireAuth, common))
	mux.Handle(NewPersonServiceHandler(NewPersonService(d.Store), common, authed))
	mux.Handle(NewLedgerServiceHandler(NewLedgerService(d.Engine), common, authed))
	mux.Handle(NewAdminServiceHandler(NewAdminService(d.Store, d.Authenticator), common, authed))
}
