package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
)

type clientsRepo struct {
	s session
}

func (r *clientsRepo) GetClient(ctx context.Context, id string) (domain.Client, error) {
	var c domain.Client
	err := r.s.with(func(st *state) error {
		var ok bool
		if c, ok = st.clients[id]; !ok {
			return store.ErrNotFound
		}
		return nil
	})
	return c, err
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.s.with(func(st *state) error {
		for _, c := range st.clients {
			clients = append(clients, c)
		}
		sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
		return nil
	})
	return clients, err
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.clients[c.ID]; ok {
			return store.ErrAlreadyExists
		}
		st.clients[c.ID] = c
		return nil
	})
}

func (r *clientsRepo) UpdateClient(ctx context.Context, id, name, email string) error {
	return r.s.with(func(st *state) error {
		c, ok := st.clients[id]
		if !ok {
			return store.ErrNotFound
		}
		c.Name = name
		c.Email = email
		c.UpdatedAt = time.Now().UTC()
		st.clients[id] = c
		return nil
	})
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.clients[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.clients, id)
		for token, t := range st.tokens {
			if t.ClientID == id {
				delete(st.tokens, token)
			}
		}
		return nil
	})
}

func (r *clientsRepo) CountProjects(ctx context.Context, clientID string) (int, error) {
	var n int
	err := r.s.with(func(st *state) error {
		for _, p := range st.projects {
			if p.ClientID == clientID {
				n++
			}
		}
		return nil
	})
	return n, err
}

type projectsRepo struct {
	s session
}

func (r *projectsRepo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	err := r.s.with(func(st *state) error {
		var ok bool
		if p, ok = st.projects[id]; !ok {
			return store.ErrNotFound
		}
		return nil
	})
	return p, err
}

func (r *projectsRepo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return r.list(func(domain.Project) bool { return true })
}

func (r *projectsRepo) ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	return r.list(func(p domain.Project) bool { return p.ClientID == clientID })
}

func (r *projectsRepo) list(match func(domain.Project) bool) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.s.with(func(st *state) error {
		for _, p := range st.projects {
			if match(p) {
				projects = append(projects, p)
			}
		}
		sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
		return nil
	})
	return projects, err
}

func (r *projectsRepo) CreateProject(ctx context.Context, p domain.Project) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.projects[p.ID]; ok {
			return store.ErrAlreadyExists
		}
		st.projects[p.ID] = p
		return nil
	})
}

func (r *projectsRepo) UpdateProject(ctx context.Context, p domain.Project) error {
	return r.s.with(func(st *state) error {
		cur, ok := st.projects[p.ID]
		if !ok {
			return store.ErrNotFound
		}
		cur.Name = p.Name
		cur.Status = p.Status
		cur.Budget = p.Budget
		cur.Balance = p.Balance
		cur.UpdatedAt = time.Now().UTC()
		st.projects[p.ID] = cur
		return nil
	})
}

func (r *projectsRepo) SetBalanceStatus(ctx context.Context, id string, balance float64, status domain.ProjectStatus) error {
	return r.s.with(func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return store.ErrNotFound
		}
		p.Balance = balance
		p.Status = status
		p.UpdatedAt = time.Now().UTC()
		st.projects[id] = p
		return nil
	})
}

func (r *projectsRepo) DeleteProject(ctx context.Context, id string) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.projects[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.projects, id)
		return nil
	})
}

func (r *projectsRepo) CountPayments(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.s.with(func(st *state) error {
		for _, p := range st.payments {
			if p.ProjectID == projectID {
				n++
			}
		}
		return nil
	})
	return n, err
}

type paymentsRepo struct {
	s session
}

func (r *paymentsRepo) GetPayment(ctx context.Context, id string) (domain.Payment, error) {
	var p domain.Payment
	err := r.s.with(func(st *state) error {
		var ok bool
		if p, ok = st.payments[id]; !ok {
			return store.ErrNotFound
		}
		return nil
	})
	return p, err
}

func (r *paymentsRepo) ListPaymentsByProject(ctx context.Context, projectID string) ([]domain.Payment, error) {
	return r.list(func(st *state, p domain.Payment) bool { return p.ProjectID == projectID })
}

func (r *paymentsRepo) ListPaymentsByClient(ctx context.Context, clientID string) ([]domain.Payment, error) {
	return r.list(func(st *state, p domain.Payment) bool {
		pr, ok := st.projects[p.ProjectID]
		return ok && pr.ClientID == clientID
	})
}

func (r *paymentsRepo) list(match func(*state, domain.Payment) bool) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.s.with(func(st *state) error {
		for _, p := range st.payments {
			if match(st, p) {
				payments = append(payments, p)
			}
		}
		sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
		return nil
	})
	return payments, err
}

func (r *paymentsRepo) CreatePayment(ctx context.Context, p domain.Payment) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.payments[p.ID]; ok {
			return store.ErrAlreadyExists
		}
		st.payments[p.ID] = p
		return nil
	})
}

func (r *paymentsRepo) UpdatePayment(ctx context.Context, id string, amount float64, date, ptype string) error {
	return r.s.with(func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return store.ErrNotFound
		}
		p.Amount = amount
		p.Date = date
		p.Type = ptype
		st.payments[id] = p
		return nil
	})
}

func (r *paymentsRepo) DeletePayment(ctx context.Context, id string) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.payments[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.payments, id)
		return nil
	})
}

func (r *paymentsRepo) SumPaymentsByProject(ctx context.Context, projectID string) (float64, error) {
	var sum float64
	err := r.s.with(func(st *state) error {
		for _, p := range st.payments {
			if p.ProjectID == projectID {
				sum += p.Amount
			}
		}
		return nil
	})
	return sum, err
}

type accessTokensRepo struct {
	s session
}

func (r *accessTokensRepo) GetAccessToken(ctx context.Context, token string) (domain.AccessToken, error) {
	var t domain.AccessToken
	err := r.s.with(func(st *state) error {
		var ok bool
		if t, ok = st.tokens[token]; !ok {
			return store.ErrNotFound
		}
		return nil
	})
	return t, err
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.tokens[t.Token]; ok {
			return store.ErrAlreadyExists
		}
		st.tokens[t.Token] = t
		return nil
	})
}

func (r *accessTokensRepo) DeleteClientAccessTokens(ctx context.Context, clientID string) error {
	return r.s.with(func(st *state) error {
		for token, t := range st.tokens {
			if t.ClientID == clientID {
				delete(st.tokens, token)
			}
		}
		return nil
	})
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context) error {
	now := time.Now().UTC()
	return r.s.with(func(st *state) error {
		for token, t := range st.tokens {
			if t.Expired(now) {
				delete(st.tokens, token)
			}
		}
		return nil
	})
}

type logsRepo struct {
	s session
}

func (r *logsRepo) AppendLog(ctx context.Context, e domain.LogEntry) error {
	return r.s.with(func(st *state) error {
		st.logSeq++
		e.ID = st.logSeq
		st.logs = append(st.logs, e)
		return nil
	})
}

func (r *logsRepo) ListLogs(ctx context.Context, limit, offset int) ([]domain.LogEntry, error) {
	var entries []domain.LogEntry
	err := r.s.with(func(st *state) error {
		// Newest first, like the sql driver.
		for i := len(st.logs) - 1 - offset; i >= 0 && len(entries) < limit; i-- {
			entries = append(entries, st.logs[i])
		}
		return nil
	})
	return entries, err
}

func (r *logsRepo) TrimLogs(ctx context.Context, keep int) error {
	return r.s.with(func(st *state) error {
		if len(st.logs) > keep {
			st.logs = append([]domain.LogEntry(nil), st.logs[len(st.logs)-keep:]...)
		}
		return nil
	})
}

type usersRepo struct {
	s session
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.s.with(func(st *state) error {
		for _, cand := range st.users {
			if strings.EqualFold(cand.Email, email) {
				u = cand
				return nil
			}
		}
		return store.ErrNotFound
	})
	return u, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.s.with(func(st *state) error {
		var ok bool
		if u, ok = st.users[id]; !ok {
			return store.ErrNotFound
		}
		return nil
	})
	return u, err
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	return r.s.with(func(st *state) error {
		for _, cand := range st.users {
			if strings.EqualFold(cand.Email, u.Email) {
				return store.ErrAlreadyExists
			}
		}
		st.users[u.ID] = u
		return nil
	})
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var empty bool
	err := r.s.with(func(st *state) error {
		empty = len(st.users) == 0
		return nil
	})
	return empty, err
}
