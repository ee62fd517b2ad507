package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familywallet/internal/events"
	"github.com/mmynk/familywallet/internal/metrics"
	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/storage"
)

// WageReport lists the wage payments made by one check.
type WageReport struct {
	// Today is the calendar day the check ran for, in the engine's timezone.
	Today    string
	Payments []models.Payment
}

// wageCheckTimeout bounds a shared wage check. The check is detached from
// the cancellation of the caller that started it.
const wageCheckTimeout = 30 * time.Second

// CheckWages pays every person of the account their daily wage for each
// calendar day since the last accrual. Running it again on the same day pays
// nothing. Concurrent checks for one account share a single run.
//
// When paying one person fails the error is returned together with a report
// of the payments that were already committed.
func (e *Engine) CheckWages(ctx context.Context, ownerID int64) (*WageReport, error) {
	v, err, shared := e.wages.Do(strconv.FormatInt(ownerID, 10), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wageCheckTimeout)
		defer cancel()
		return e.checkWages(runCtx, ownerID)
	})
	if shared {
		slog.DebugContext(ctx, "Joined in-flight wage check", "owner_id", ownerID)
	}
	report, _ := v.(*WageReport)
	return report, err
}

// Today returns the current calendar day in the engine's timezone.
func (e *Engine) Today() string {
	return e.now().In(e.loc).Format(models.DateLayout)
}

func (e *Engine) checkWages(ctx context.Context, ownerID int64) (*WageReport, error) {
	today := e.Today()

	persons, err := e.store.ListPersons(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &WageReport{Today: today, Payments: []models.Payment{}}
	for _, p := range persons {
		if !p.DailyWage.IsPositive() {
			continue
		}

		payment, res, err := e.payWage(ctx, ownerID, p.ID, today)
		if err != nil {
			metrics.ObserveLedger("daily_wage", outcome(err))
			slog.ErrorContext(ctx, "Wage check stopped",
				"owner_id", ownerID,
				"person_id", p.ID,
				"paid_before_failure", len(report.Payments),
				"error", err,
			)
			return report, fmt.Errorf("wage check for person %d: %w", p.ID, err)
		}
		if payment == nil {
			continue
		}

		metrics.ObserveLedger("daily_wage", metrics.OutcomeOK)
		metrics.WagePayments.Inc()
		metrics.WageDaysPaid.Add(float64(payment.Days))
		e.publish(ctx, events.KindWagePaid, ownerID, res)
		slog.InfoContext(ctx, "Paid daily wage",
			"owner_id", ownerID,
			"person_id", p.ID,
			"days", payment.Days,
			"amount", payment.Amount,
		)

		report.Payments = append(report.Payments, *payment)
	}

	slog.InfoContext(ctx, "Wage check complete",
		"owner_id", ownerID,
		"today", today,
		"payments", len(report.Payments),
	)
	return report, nil
}

// payWage settles one person inside its own storage transaction. It returns
// a nil payment when nothing was owed.
func (e *Engine) payWage(ctx context.Context, ownerID, personID int64, today string) (*models.Payment, *Result, error) {
	var (
		payment *models.Payment
		res     *Result
	)
	err := e.store.InTx(ctx, func(ctx context.Context, l storage.Ledger) error {
		p, err := l.GetPerson(ctx, ownerID, personID)
		if err != nil {
			return err
		}
		if !p.DailyWage.IsPositive() {
			return nil
		}

		// First check only starts the clock.
		if p.LastWageDate == "" {
			return l.SetLastWageDate(ctx, personID, today)
		}

		days, err := DaysBetween(p.LastWageDate, today)
		if err != nil {
			return err
		}
		if days <= 0 {
			return nil
		}

		total := p.DailyWage.Mul(decimal.NewFromInt(int64(days)))
		entry := models.Adjustment{Kind: models.TypeDailyWage, Delta: total}
		description := fmt.Sprintf("Daily wage (%d days x %s)", days, p.DailyWage.String())

		t, err := e.appendForward(ctx, l, personID, entry, description)
		if err != nil {
			return err
		}

		balance, err := l.ApplyDelta(ctx, personID, total)
		if err != nil {
			return err
		}
		if err := l.SetLastWageDate(ctx, personID, today); err != nil {
			return err
		}

		payment = &models.Payment{PersonID: personID, Days: days, Amount: total}
		res = &Result{PersonID: personID, Transaction: t, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, res, nil
}

// DaysBetween returns the number of whole calendar days from one date to
// another, both in models.DateLayout. It is negative when to precedes from.
func DaysBetween(from, to string) (int, error) {
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", from, err)
	}
	end, err := time.Parse(models.DateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", to, err)
	}
	return int(end.Sub(start).Hours() / 24), nil
}
