package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/familywallet/internal/auth"
	"github.com/mmynk/familywallet/internal/ledger"
	"github.com/mmynk/familywallet/internal/middleware"
	"github.com/mmynk/familywallet/internal/rpc"
	"github.com/mmynk/familywallet/internal/storage"
)

// AdminService manages accounts. Callers must be admins.
type AdminService struct {
	users         storage.UserStore
	authenticator auth.Authenticator
}

// NewAdminService creates a new AdminService.
func NewAdminService(users storage.UserStore, authenticator auth.Authenticator) *AdminService {
	return &AdminService{users: users, authenticator: authenticator}
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context, _ *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, rpc.Error(err)
	}

	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return connect.NewResponse(&ListUsersResponse{Users: out}), nil
}

// ResetPassword replaces a user's password with a random one and returns it.
func (s *AdminService) ResetPassword(ctx context.Context, req *connect.Request[ResetPasswordRequest]) (*connect.Response[ResetPasswordResponse], error) {
	if err := requireID("userId", req.Msg.UserID); err != nil {
		return nil, rpc.Error(err)
	}

	password, err := s.authenticator.ResetCredential(ctx, req.Msg.UserID)
	if err != nil {
		return nil, rpc.Error(err)
	}

	slog.Info("Password reset", "admin_id", middleware.GetUserID(ctx), "user_id", req.Msg.UserID)
	return connect.NewResponse(&ResetPasswordResponse{NewPassword: password}), nil
}

// DeleteUser removes an account with all of its persons and transactions.
func (s *AdminService) DeleteUser(ctx context.Context, req *connect.Request[DeleteUserRequest]) (*connect.Response[DeleteUserResponse], error) {
	if err := requireID("userId", req.Msg.UserID); err != nil {
		return nil, rpc.Error(err)
	}
	if req.Msg.UserID == middleware.GetUserID(ctx) {
		return nil, rpc.Error(fmt.Errorf("%w: admins cannot delete their own account", ledger.ErrInvalidInput))
	}

	if err := s.users.DeleteUser(ctx, req.Msg.UserID); err != nil {
		return nil, rpc.Error(err)
	}

	slog.Info("User deleted", "admin_id", middleware.GetUserID(ctx), "user_id", req.Msg.UserID)
	return connect.NewResponse(&DeleteUserResponse{}), nil
}

// NewAdminServiceHandler builds the HTTP handler for AdminService. opts must
// authenticate the caller; RequireAdmin is added after them.
func NewAdminServiceHandler(svc *AdminService, opts ...connect.HandlerOption) (string, http.Handler) {
	options := rpc.HandlerOptions(append(opts[:len(opts):len(opts)],
		connect.WithInterceptors(middleware.RequireAdmin()))...)

	mux := http.NewServeMux()
	mux.Handle(rpc.AdminServiceListUsersProcedure, connect.NewUnaryHandler(
		rpc.AdminServiceListUsersProcedure, svc.ListUsers, options...))
	mux.Handle(rpc.AdminServiceResetPasswordProcedure, connect.NewUnaryHandler(
		rpc.AdminServiceResetPasswordProcedure, svc.ResetPassword, options...))
	mux.Handle(rpc.AdminServiceDeleteUserProcedure, connect.NewUnaryHandler(
		rpc.AdminServiceDeleteUserProcedure, svc.DeleteUser, options...))

	return rpc.ServicePath(rpc.AdminServiceName), mux
}
