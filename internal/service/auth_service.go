package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/familywallet/internal/auth"
	"github.com/mmynk/familywallet/internal/middleware"
	"github.com/mmynk/familywallet/internal/rpc"
	"github.com/mmynk/familywallet/internal/storage"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	s.logger.Info("Register request", "username", req.Msg.Username)

	user, err := s.authenticator.Register(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "username", req.Msg.Username, "error", err)
		return nil, rpc.Error(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, rpc.Error(err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)
	return connect.NewResponse(&AuthResponse{Token: token, User: toUser(user)}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	s.logger.Info("Login request", "username", req.Msg.Username)

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Msg.Username, "error", err)
		return nil, rpc.Error(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, rpc.Error(err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "username", user.Username)
	return connect.NewResponse(&AuthResponse{Token: token, User: toUser(user)}), nil
}

// Me returns the currently authenticated user's information.
func (s *AuthService) Me(ctx context.Context, _ *connect.Request[MeRequest]) (*connect.Response[MeResponse], error) {
	user, err := s.users.GetUserByID(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(&MeResponse{User: toUser(user)}), nil
}

// NewAuthServiceHandler builds the HTTP handler for AuthService. Register and
// Login are public; Me runs behind requireAuth.
func NewAuthServiceHandler(svc *AuthService, requireAuth connect.Interceptor, opts ...connect.HandlerOption) (string, http.Handler) {
	authed := append(opts[:len(opts):len(opts)], connect.WithInterceptors(requireAuth))

	mux := http.NewServeMux()
	mux.Handle(rpc.AuthServiceRegisterProcedure, connect.NewUnaryHandler(
		rpc.AuthServiceRegisterProcedure, svc.Register, rpc.HandlerOptions(opts...)...))
	mux.Handle(rpc.AuthServiceLoginProcedure, connect.NewUnaryHandler(
		rpc.AuthServiceLoginProcedure, svc.Login, rpc.HandlerOptions(opts...)...))
	mux.Handle(rpc.AuthServiceMeProcedure, connect.NewUnaryHandler(
		rpc.AuthServiceMeProcedure, svc.Me, rpc.HandlerOptions(authed...)...))

	return rpc.ServicePath(rpc.AuthServiceName), mux
}
