package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kesef/internal/cache"
	"kesef/internal/core"
	"kesef/internal/log"
	"kesef/internal/ports"
)

type userStore interface {
	ports.UserStore
	ports.TransactionStore
}

// UserData is the admin view of a regular user and their activity.
type UserData struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	CreatedAt         time.Time  `json:"createdAt"`
	TotalTransactions int        `json:"totalTransactions"`
	TotalExpenses     core.Money `json:"totalExpenses"`
	LastActivity      *string    `json:"lastActivity"`
}

// UserService registers and authenticates users. Lookups by ID go through
// an LRU cache.
type UserService struct {
	store  userStore
	admins map[string]bool
	cache  *cache.LRUCache[core.User]
	cost   int
	now    func() time.Time
}

// NewUserService builds the service. Emails in adminEmails become admins on
// registration; cache may be nil.
func NewUserService(store userStore, adminEmails []string, userCache *cache.LRUCache[core.User]) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = core.NormalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &UserService{
		store:  store,
		admins: admins,
		cache:  userCache,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	if err := core.ValidateRegistration(name, email, password); err != nil {
		return core.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	email = core.NormalizeEmail(email)
	u := core.User{
		ID:           core.NewUserID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      s.admins[email],
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return core.User{}, err
	}

	log.FromContext(ctx).InfoContext(ctx, "User registered",
		log.FieldUserID, u.ID,
		log.FieldOperation, log.OpRegister,
		"is_admin", u.IsAdmin)
	return u, nil
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, error) {
	u, err := s.store.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrInvalidCredentials
		}
		return core.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return core.User{}, core.ErrInvalidCredentials
	}
	if s.cache != nil {
		s.cache.Set(u.ID, u)
	}
	return u, nil
}

// Authenticate resolves the caller of a request.
func (s *UserService) Authenticate(ctx context.Context, userID string) (core.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return core.User{}, core.ErrMissingUser
	}
	if s.cache != nil {
		if u, ok := s.cache.Get(userID); ok {
			return u, nil
		}
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if s.cache != nil {
		s.cache.Set(u.ID, u)
	}
	return u, nil
}

// UsersData lists every non-admin user with transaction totals.
func (s *UserService) UsersData(ctx context.Context) ([]UserData, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := []UserData{}
	for _, u := range users {
		if u.IsAdmin {
			continue
		}
		txs, err := s.store.ListTransactions(ctx, u.ID, 0)
		if err != nil {
			return nil, fmt.Errorf("list transactions for %s: %w", u.ID, err)
		}
		d := UserData{
			ID:                u.ID,
			Name:              u.Name,
			Email:             u.Email,
			CreatedAt:         u.CreatedAt,
			TotalTransactions: len(txs),
		}
		var latest time.Time
		for _, tx := range txs {
			if tx.Type == core.Expense {
				d.TotalExpenses.Cents += tx.Amount.Cents
			}
			if t, ok := core.ParseDate(tx.Date); ok && t.After(latest) {
				latest = t
			}
		}
		if !latest.IsZero() {
			last := latest.Format(core.DateLayout)
			d.LastActivity = &last
		}
		out = append(out, d)
	}
	return out, nil
}

// MakeAdmin promotes the user with email.
func (s *UserService) MakeAdmin(ctx context.Context, email string) (core.User, error) {
	email = core.NormalizeEmail(email)
	if email == "" {
		return core.User{}, core.ErrInvalidEmail
	}
	u, err := s.store.SetAdmin(ctx, email, true)
	if err != nil {
		return core.User{}, err
	}
	if s.cache != nil {
		s.cache.Delete(u.ID)
	}
	log.FromContext(ctx).InfoContext(ctx, "User promoted to admin", log.FieldUserID, u.ID)
	return u, nil
}

// CacheStats reports user cache effectiveness.
func (s *UserService) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}
