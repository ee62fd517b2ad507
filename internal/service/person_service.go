package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/familywallet/internal/calculator"
	"github.com/mmynk/familywallet/internal/ledger"
	"github.com/mmynk/familywallet/internal/middleware"
	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/rpc"
	"github.com/mmynk/familywallet/internal/storage"
)

const maxNameLength = 100

// PersonService manages the persons of the caller's account.
type PersonService struct {
	store storage.Store
}

// NewPersonService creates a new PersonService.
func NewPersonService(store storage.Store) *PersonService {
	return &PersonService{store: store}
}

// ListPersons returns every person of the account with the account total.
func (s *PersonService) ListPersons(ctx context.Context, _ *connect.Request[ListPersonsRequest]) (*connect.Response[ListPersonsResponse], error) {
	ownerID := middleware.GetUserID(ctx)

	persons, err := s.store.ListPersons(ctx, ownerID)
	if err != nil {
		return nil, rpc.Error(err)
	}

	out := make([]Person, 0, len(persons))
	for _, p := range persons {
		out = append(out, toPerson(p))
	}

	return connect.NewResponse(&ListPersonsResponse{
		Persons: out,
		Total:   calculator.AccountTotal(persons).String(),
	}), nil
}

// CreatePerson adds a person with a zero balance.
func (s *PersonService) CreatePerson(ctx context.Context, req *connect.Request[CreatePersonRequest]) (*connect.Response[PersonResponse], error) {
	ownerID := middleware.GetUserID(ctx)

	name, err := validateName(req.Msg.Name)
	if err != nil {
		return nil, rpc.Error(err)
	}

	wage := decimal.Zero
	if req.Msg.DailyWage != "" {
		if wage, err = parseAmount("dailyWage", req.Msg.DailyWage); err != nil {
			return nil, rpc.Error(err)
		}
	}

	person := &models.Person{OwnerID: ownerID, Name: name, DailyWage: wage}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, rpc.Error(err)
	}

	slog.Info("Person created", "owner_id", ownerID, "person_id", person.ID)
	return connect.NewResponse(&PersonResponse{Person: toPerson(person)}), nil
}

// UpdatePerson changes a person's name and/or daily wage. The balance only
// moves through ledger operations.
func (s *PersonService) UpdatePerson(ctx context.Context, req *connect.Request[UpdatePersonRequest]) (*connect.Response[PersonResponse], error) {
	ownerID := middleware.GetUserID(ctx)
	if err := requireID("id", req.Msg.ID); err != nil {
		return nil, rpc.Error(err)
	}

	var update models.PersonUpdate
	if req.Msg.Name != nil {
		name, err := validateName(*req.Msg.Name)
		if err != nil {
			return nil, rpc.Error(err)
		}
		update.Name = &name
	}
	if req.Msg.DailyWage != nil {
		wage, err := parseAmount("dailyWage", *req.Msg.DailyWage)
		if err != nil {
			return nil, rpc.Error(err)
		}
		update.DailyWage = &wage
	}
	if update.Empty() {
		return nil, rpc.Error(fmt.Errorf("%w: nothing to update", ledger.ErrInvalidInput))
	}

	person, err := s.store.UpdatePerson(ctx, ownerID, req.Msg.ID, update)
	if err != nil {
		return nil, rpc.Error(err)
	}

	return connect.NewResponse(&PersonResponse{Person: toPerson(person)}), nil
}

// DeletePerson removes a person together with its ledger.
func (s *PersonService) DeletePerson(ctx context.Context, req *connect.Request[DeletePersonRequest]) (*connect.Response[DeletePersonResponse], error) {
	ownerID := middleware.GetUserID(ctx)
	if err := requireID("id", req.Msg.ID); err != nil {
		return nil, rpc.Error(err)
	}

	if err := s.store.DeletePerson(ctx, ownerID, req.Msg.ID); err != nil {
		return nil, rpc.Error(err)
	}

	slog.Info("Person deleted", "owner_id", ownerID, "person_id", req.Msg.ID)
	return connect.NewResponse(&DeletePersonResponse{}), nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ledger.ErrInvalidInput)
	}
	if len(name) > maxNameLength {
		return "", fmt.Errorf("%w: name longer than %d bytes", ledger.ErrInvalidInput, maxNameLength)
	}
	return name, nil
}

// NewPersonServiceHandler builds the HTTP handler for PersonService. Every
// procedure requires authentication; pass RequireAuth in opts.
func NewPersonServiceHandler(svc *PersonService, opts ...connect.HandlerOption) (string, http.Handler) {
	options := rpc.HandlerOptions(opts...)

	mux := http.NewServeMux()
	mux.Handle(rpc.PersonServiceListPersonsProcedure, connect.NewUnaryHandler(
		rpc.PersonServiceListPersonsProcedure, svc.ListPersons, options...))
	mux.Handle(rpc.PersonServiceCreatePersonProcedure, connect.NewUnaryHandler(
		rpc.PersonServiceCreatePersonProcedure, svc.CreatePerson, options...))
	mux.Handle(rpc.PersonServiceUpdatePersonProcedure, connect.NewUnaryHandler(
		rpc.PersonServiceUpdatePersonProcedure, svc.UpdatePerson, options...))
	mux.Handle(rpc.PersonServiceDeletePersonProcedure, connect.NewUnaryHandler(
		rpc.PersonServiceDeletePersonProcedure, svc.DeletePerson, options...))

	return rpc.ServicePath(rpc.PersonServiceName), mux
}
