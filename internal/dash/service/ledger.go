package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
	"github.com/fernlabs/clientdash/pkg/idx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidBudget      = errors.New("budget must be positive")
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrClientNotFound     = errors.New("client not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrClientHasProjects  = errors.New("client still has projects")
	ErrProjectHasPayments = errors.New("project still has payments")
)

// LedgerService owns clients, projects and payments, and is the only writer
// of project balances. Every mutation runs inside a store transaction together
// with its audit entry, so a project's balance and status always reflect its
// recorded payments and the trail never references a write that was rolled
// back.
type LedgerService struct {
	Store store.Store
}

// EditPaymentCommand carries the replacement values for an existing payment.
type EditPaymentCommand struct {
	PaymentID string
	Amount    float64
	Date      string
	Type      string
}

// --- clients ---

func (s *LedgerService) CreateClient(ctx context.Context, name, email string) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	if name == "" {
		return domain.Client{}, ErrNameRequired
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:        idx.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Clients().CreateClient(ctx, client); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionClientCreate,
			fmt.Sprintf("client %q created (%s)", client.Name, client.ID)))
	})
	if err != nil {
		l.Error("failed to create client", "error", err, "name", name)
		return domain.Client{}, err
	}

	l.Info("client created", "client_id", client.ID, "name", client.Name)
	return client, nil
}

func (s *LedgerService) GetClient(ctx context.Context, id string) (domain.Client, error) {
	client, err := s.Store.Clients().GetClient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, ErrClientNotFound
	}
	return client, err
}

func (s *LedgerService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

func (s *LedgerService) UpdateClient(ctx context.Context, id, name, email string) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	if name == "" {
		return domain.Client{}, ErrNameRequired
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Clients().UpdateClient(ctx, id, name, email); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionClientUpdate,
			fmt.Sprintf("client %q updated (%s)", name, id)))
	})
	if err != nil {
		l.Error("failed to update client", "error", err, "client_id", id)
		return domain.Client{}, err
	}

	l.Info("client updated", "client_id", id)
	return s.Store.Clients().GetClient(ctx, id)
}

// DeleteClient refuses to remove a client that still has projects. The
// blocked attempt is itself audited.
func (s *LedgerService) DeleteClient(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		client, err := tx.Clients().GetClient(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		n, err := tx.Clients().CountProjects(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrClientHasProjects
		}

		if err := tx.Clients().DeleteClient(ctx, id); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionClientDelete,
			fmt.Sprintf("client %q deleted (%s)", client.Name, id)))
	})
	if err != nil {
		if errors.Is(err, ErrClientHasProjects) {
			// The refusal audit entry must survive the rollback.
			_ = s.Store.Logs().AppendLog(ctx, newLogEntry(domain.ActionDeleteBlocked,
				fmt.Sprintf("client delete refused, client has projects (%s)", id)))
			l.Warn("client delete blocked", "client_id", id)
			return ErrClientHasProjects
		}
		l.Error("failed to delete client", "error", err, "client_id", id)
		return err
	}

	l.Info("client deleted", "client_id", id)
	return nil
}

// --- projects ---

func (s *LedgerService) CreateProject(ctx context.Context, clientID, name string, budget float64) (domain.Project, error) {
	l := slogx.FromContext(ctx)

	if name == "" {
		return domain.Project{}, ErrNameRequired
	}
	if budget <= 0 {
		return domain.Project{}, ErrInvalidBudget
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:        idx.New().String(),
		ClientID:  clientID,
		Name:      name,
		Budget:    budget,
		Balance:   budget,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Clients().GetClient(ctx, clientID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		if err := tx.Projects().CreateProject(ctx, project); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionProjectCreate,
			fmt.Sprintf("project %q created with budget %.2f (%s)", project.Name, project.Budget, project.ID)))
	})
	if err != nil {
		l.Error("failed to create project", "error", err, "client_id", clientID, "name", name)
		return domain.Project{}, err
	}

	l.Info("project created", "project_id", project.ID, "client_id", clientID, "budget", budget)
	return project, nil
}

func (s *LedgerService) GetProject(ctx context.Context, id string) (domain.Project, error) {
	project, err := s.Store.Projects().GetProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Project{}, ErrProjectNotFound
	}
	return project, err
}

func (s *LedgerService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.Store.Projects().ListProjects(ctx)
}

func (s *LedgerService) ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	return s.Store.Projects().ListProjectsByClient(ctx, clientID)
}

// EditProject replaces name and budget and rebuilds balance and status from
// the recorded payments rather than adjusting the stored balance, so a
// budget change lands on the derived value even if the balance had been
// clamped at zero before.
func (s *LedgerService) EditProject(ctx context.Context, id, name string, budget float64) (domain.Project, error) {
	l := slogx.FromContext(ctx)

	if name == "" {
		return domain.Project{}, ErrNameRequired
	}
	if budget <= 0 {
		return domain.Project{}, ErrInvalidBudget
	}

	var project domain.Project
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		project, err = tx.Projects().GetProject(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		paid, err := tx.Payments().SumPaymentsByProject(ctx, id)
		if err != nil {
			return err
		}

		project.Name = name
		project.Budget = budget
		project.Balance = clampBalance(budget - paid)
		project.Status = domain.StatusForBalance(project.Balance)

		if err := tx.Projects().UpdateProject(ctx, project); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionProjectUpdate,
			fmt.Sprintf("project %q updated, budget %.2f balance %.2f (%s)",
				project.Name, project.Budget, project.Balance, project.ID)))
	})
	if err != nil {
		l.Error("failed to update project", "error", err, "project_id", id)
		return domain.Project{}, err
	}

	l.Info("project updated", "project_id", id, "budget", budget, "balance", project.Balance)
	return project, nil
}

// DeleteProject refuses to remove a project that still has payments.
func (s *LedgerService) DeleteProject(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		project, err := tx.Projects().GetProject(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		n, err := tx.Projects().CountPayments(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrProjectHasPayments
		}

		if err := tx.Projects().DeleteProject(ctx, id); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionProjectDelete,
			fmt.Sprintf("project %q deleted (%s)", project.Name, id)))
	})
	if err != nil {
		if errors.Is(err, ErrProjectHasPayments) {
			_ = s.Store.Logs().AppendLog(ctx, newLogEntry(domain.ActionDeleteBlocked,
				fmt.Sprintf("project delete refused, project has payments (%s)", id)))
			l.Warn("project delete blocked", "project_id", id)
			return ErrProjectHasPayments
		}
		l.Error("failed to delete project", "error", err, "project_id", id)
		return err
	}

	l.Info("project deleted", "project_id", id)
	return nil
}

// --- payments ---

// RecordPayment books a payment against a project and moves its balance
// down by the amount, clamped at zero. The returned flag reports whether the
// payment pushed the cumulative total past the budget; the payment is still
// accepted in that case and callers surface it as a warning.
func (s *LedgerService) RecordPayment(ctx context.Context, projectID string, amount float64, date, ptype string) (domain.Payment, bool, error) {
	l := slogx.FromContext(ctx)

	if amount <= 0 {
		return domain.Payment{}, false, ErrInvalidAmount
	}
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	payment := domain.Payment{
		ID:        idx.New().String(),
		ProjectID: projectID,
		Date:      date,
		Amount:    amount,
		Type:      ptype,
		CreatedAt: time.Now().UTC(),
	}

	var overpaid bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		project, err := tx.Projects().GetProject(ctx, projectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		if err := tx.Payments().CreatePayment(ctx, payment); err != nil {
			return err
		}

		raw := project.Balance - amount
		overpaid = raw < 0
		balance := clampBalance(raw)

		if err := tx.Projects().SetBalanceStatus(ctx, projectID, balance, domain.StatusForBalance(balance)); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionPaymentCreate,
			fmt.Sprintf("payment of %.2f recorded on project %q, balance %.2f (%s)",
				amount, project.Name, balance, payment.ID)))
	})
	if err != nil {
		l.Error("failed to record payment", "error", err, "project_id", projectID, "amount", amount)
		return domain.Payment{}, false, err
	}

	if overpaid {
		l.Warn("payment exceeds remaining budget", "project_id", projectID, "payment_id", payment.ID, "amount", amount)
	}
	l.Info("payment recorded", "payment_id", payment.ID, "project_id", projectID, "amount", amount)
	return payment, overpaid, nil
}

// EditPayment applies the difference between the old and new amount to the
// project balance. The overpaid flag reports whether the adjustment pushed
// the balance below zero.
func (s *LedgerService) EditPayment(ctx context.Context, cmd EditPaymentCommand) (domain.Payment, bool, error) {
	l := slogx.FromContext(ctx)

	if cmd.Amount <= 0 {
		return domain.Payment{}, false, ErrInvalidAmount
	}

	var (
		payment  domain.Payment
		overpaid bool
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		payment, err = tx.Payments().GetPayment(ctx, cmd.PaymentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		project, err := tx.Projects().GetProject(ctx, payment.ProjectID)
		if err != nil {
			return err
		}

		date := cmd.Date
		if date == "" {
			date = payment.Date
		}

		delta := cmd.Amount - payment.Amount
		raw := project.Balance - delta
		overpaid = raw < 0
		balance := clampBalance(raw)

		if err := tx.Payments().UpdatePayment(ctx, cmd.PaymentID, cmd.Amount, date, cmd.Type); err != nil {
			return err
		}
		if err := tx.Projects().SetBalanceStatus(ctx, project.ID, balance, domain.StatusForBalance(balance)); err != nil {
			return err
		}

		payment.Amount = cmd.Amount
		payment.Date = date
		payment.Type = cmd.Type

		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionPaymentUpdate,
			fmt.Sprintf("payment %s updated to %.2f on project %q, balance %.2f",
				payment.ID, cmd.Amount, project.Name, balance)))
	})
	if err != nil {
		l.Error("failed to update payment", "error", err, "payment_id", cmd.PaymentID)
		return domain.Payment{}, false, err
	}

	l.Info("payment updated", "payment_id", cmd.PaymentID, "amount", cmd.Amount)
	return payment, overpaid, nil
}

// DeletePayment removes a payment and rebuilds the project balance from the
// remaining payments.
func (s *LedgerService) DeletePayment(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		payment, err := tx.Payments().GetPayment(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		project, err := tx.Projects().GetProject(ctx, payment.ProjectID)
		if err != nil {
			return err
		}

		if err := tx.Payments().DeletePayment(ctx, id); err != nil {
			return err
		}

		paid, err := tx.Payments().SumPaymentsByProject(ctx, project.ID)
		if err != nil {
			return err
		}
		balance := clampBalance(project.Budget - paid)

		if err := tx.Projects().SetBalanceStatus(ctx, project.ID, balance, domain.StatusForBalance(balance)); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionPaymentDelete,
			fmt.Sprintf("payment %s of %.2f deleted from project %q, balance %.2f",
				payment.ID, payment.Amount, project.Name, balance)))
	})
	if err != nil {
		l.Error("failed to delete payment", "error", err, "payment_id", id)
		return err
	}

	l.Info("payment deleted", "payment_id", id)
	return nil
}

func (s *LedgerService) GetPayment(ctx context.Context, id string) (domain.Payment, error) {
	payment, err := s.Store.Payments().GetPayment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Payment{}, ErrPaymentNotFound
	}
	return payment, err
}

func (s *LedgerService) ListPaymentsByProject(ctx context.Context, projectID string) ([]domain.Payment, error) {
	return s.Store.Payments().ListPaymentsByProject(ctx, projectID)
}

func clampBalance(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
