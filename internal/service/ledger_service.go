package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/familywallet/internal/ledger"
	"github.com/mmynk/familywallet/internal/middleware"
	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/rpc"
)

// LedgerService exposes balance adjustments, undo/redo and wage checks.
type LedgerService struct {
	engine *ledger.Engine
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(engine *ledger.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

// Adjust adds to or subtracts from a person's balance.
func (s *LedgerService) Adjust(ctx context.Context, req *connect.Request[AdjustRequest]) (*connect.Response[LedgerResponse], error) {
	if err := requireID("personId", req.Msg.PersonID); err != nil {
		return nil, rpc.Error(err)
	}
	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, rpc.Error(err)
	}

	res, err := s.engine.Adjust(ctx, middleware.GetUserID(ctx), req.Msg.PersonID,
		models.TransactionType(req.Msg.Type), amount, req.Msg.Description)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(toLedgerResponse(res)), nil
}

// Clear zeroes a person's balance.
func (s *LedgerService) Clear(ctx context.Context, req *connect.Request[ClearRequest]) (*connect.Response[LedgerResponse], error) {
	if err := requireID("personId", req.Msg.PersonID); err != nil {
		return nil, rpc.Error(err)
	}

	res, err := s.engine.Clear(ctx, middleware.GetUserID(ctx), req.Msg.PersonID, req.Msg.Description)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(toLedgerResponse(res)), nil
}

// Undo reverts the person's most recent active transaction.
func (s *LedgerService) Undo(ctx context.Context, req *connect.Request[UndoRequest]) (*connect.Response[LedgerResponse], error) {
	if err := requireID("personId", req.Msg.PersonID); err != nil {
		return nil, rpc.Error(err)
	}

	res, err := s.engine.Undo(ctx, middleware.GetUserID(ctx), req.Msg.PersonID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(toLedgerResponse(res)), nil
}

// Redo re-applies the person's earliest undone transaction.
func (s *LedgerService) Redo(ctx context.Context, req *connect.Request[RedoRequest]) (*connect.Response[LedgerResponse], error) {
	if err := requireID("personId", req.Msg.PersonID); err != nil {
		return nil, rpc.Error(err)
	}

	res, err := s.engine.Redo(ctx, middleware.GetUserID(ctx), req.Msg.PersonID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(toLedgerResponse(res)), nil
}

// ListTransactions returns a person's active transactions, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	if err := requireID("personId", req.Msg.PersonID); err != nil {
		return nil, rpc.Error(err)
	}

	h, err := s.engine.History(ctx, middleware.GetUserID(ctx), req.Msg.PersonID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(&ListTransactionsResponse{
		Transactions: toTransactions(h.Transactions),
		CanUndo:      h.CanUndo,
		CanRedo:      h.CanRedo,
	}), nil
}

// ListAccountTransactions returns the active transactions of every person.
func (s *LedgerService) ListAccountTransactions(ctx context.Context, _ *connect.Request[ListAccountTransactionsRequest]) (*connect.Response[ListAccountTransactionsResponse], error) {
	h, err := s.engine.AccountHistory(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(&ListAccountTransactionsResponse{
		Transactions: toTransactions(h.Transactions),
		HasUndone:    h.HasUndone,
	}), nil
}

// CheckWages pays outstanding daily wages for the account.
func (s *LedgerService) CheckWages(ctx context.Context, _ *connect.Request[CheckWagesRequest]) (*connect.Response[CheckWagesResponse], error) {
	report, err := s.engine.CheckWages(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, rpc.Error(err)
	}

	payments := make([]WagePayment, 0, len(report.Payments))
	for _, p := range report.Payments {
		payments = append(payments, WagePayment{
			PersonID: p.PersonID,
			Days:     p.Days,
			Amount:   p.Amount.String(),
		})
	}
	return connect.NewResponse(&CheckWagesResponse{Today: report.Today, Payments: payments}), nil
}

// VerifyBalance compares a person's cached balance with a replay of the ledger.
func (s *LedgerService) VerifyBalance(ctx context.Context, req *connect.Request[VerifyBalanceRequest]) (*connect.Response[VerifyBalanceResponse], error) {
	if err := requireID("personId", req.Msg.PersonID); err != nil {
		return nil, rpc.Error(err)
	}

	c, err := s.engine.Verify(ctx, middleware.GetUserID(ctx), req.Msg.PersonID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return connect.NewResponse(&VerifyBalanceResponse{
		PersonID:   c.PersonID,
		Cached:     c.Cached.String(),
		Replayed:   c.Replayed.String(),
		Consistent: c.Consistent,
	}), nil
}

// NewLedgerServiceHandler builds the HTTP handler for LedgerService. Every
// procedure requires authentication; pass RequireAuth in opts.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	options := rpc.HandlerOptions(opts...)

	mux := http.NewServeMux()
	mux.Handle(rpc.LedgerServiceAdjustProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceAdjustProcedure, svc.Adjust, options...))
	mux.Handle(rpc.LedgerServiceClearProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceClearProcedure, svc.Clear, options...))
	mux.Handle(rpc.LedgerServiceUndoProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceUndoProcedure, svc.Undo, options...))
	mux.Handle(rpc.LedgerServiceRedoProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceRedoProcedure, svc.Redo, options...))
	mux.Handle(rpc.LedgerServiceListTransactionsProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceListTransactionsProcedure, svc.ListTransactions, options...))
	mux.Handle(rpc.LedgerServiceListAccountTransactionsProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceListAccountTransactionsProcedure, svc.ListAccountTransactions, options...))
	mux.Handle(rpc.LedgerServiceCheckWagesProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceCheckWagesProcedure, svc.CheckWages, options...))
	mux.Handle(rpc.LedgerServiceVerifyBalanceProcedure, connect.NewUnaryHandler(
		rpc.LedgerServiceVerifyBalanceProcedure, svc.VerifyBalance, options...))

	return rpc.ServicePath(rpc.LedgerServiceName), mux
}
