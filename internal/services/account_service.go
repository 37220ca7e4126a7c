package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"wedplan/internal/amqp"
	"wedplan/internal/core"
	applog "wedplan/internal/log"
	"wedplan/internal/storage"
)

// Registration is the sign-up form: the owner and their wedding.
type Registration struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	BrideName            string
	GroomName            string
	WeddingDate          core.Date
	Budget               core.Money
}

// WeddingSettings are the editable fields of a wedding.
type WeddingSettings struct {
	BrideName   string     `json:"bride_name"`
	GroomName   string     `json:"groom_name"`
	WeddingDate core.Date  `json:"wedding_date"`
	Budget      core.Money `json:"budget"`
}

// AccountService registers and authenticates users and edits their wedding.
type AccountService struct {
	base
	store    storage.Store
	hashCost int
}

func NewAccountService(store storage.Store, events Publisher) *AccountService {
	return &AccountService{
		base:     newBase(events),
		store:    store,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates the user and their wedding. Field problems come back as
// core.ValidationErrors; a used email as core.ErrEmailTaken.
func (s *AccountService) Register(ctx context.Context, in Registration) (core.User, core.Wedding, error) {
	now := s.now()
	user := core.User{
		ID:        core.NewID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	wedding := core.Wedding{
		ID:          core.NewID(),
		UserID:      user.ID,
		BrideName:   strings.TrimSpace(in.BrideName),
		GroomName:   strings.TrimSpace(in.GroomName),
		WeddingDate: in.WeddingDate,
		Budget:      in.Budget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	verrs := core.ValidationErrors{}
	merge(verrs, user.Validate())
	merge(verrs, core.ValidatePassword(in.Password, in.PasswordConfirmation))
	merge(verrs, wedding.Validate())
	if err := verrs.Err(); err != nil {
		return core.User{}, core.Wedding{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return core.User{}, core.Wedding{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.store.CreateAccount(ctx, user, wedding); err != nil {
		return core.User{}, core.Wedding{}, fmt.Errorf("register: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentAuth).InfoContext(ctx, "User registered",
		applog.FieldUserID, user.ID,
		applog.FieldWeddingID, wedding.ID)
	return user, wedding, nil
}

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("wedplan-dummy-password"), bcrypt.DefaultCost)

// Authenticate returns the user for valid credentials and
// core.ErrInvalidCredentials otherwise.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, core.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentAuth).InfoContext(ctx, "Login rejected",
			applog.FieldUserID, user.ID)
		return core.User{}, core.ErrInvalidCredentials
	}
	return user, nil
}

// User loads a user by id.
func (s *AccountService) User(ctx context.Context, userID string) (core.User, error) {
	return s.store.GetUser(ctx, userID)
}

// WeddingFor returns the wedding owned by userID, or core.ErrNoWedding.
func (s *AccountService) WeddingFor(ctx context.Context, userID string) (core.Wedding, error) {
	w, err := s.store.GetWeddingByUser(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Wedding{}, core.ErrNoWedding
	}
	if err != nil {
		return core.Wedding{}, fmt.Errorf("load wedding: %w", err)
	}
	return w, nil
}

// UpdateSettings replaces the editable wedding fields.
func (s *AccountService) UpdateSettings(ctx context.Context, weddingID string, in WeddingSettings) (core.Wedding, error) {
	ctx, span := startSpan(ctx, "AccountService.UpdateSettings", weddingID)
	w, err := s.updateSettings(ctx, weddingID, in)
	return w, endSpan(span, err)
}

func (s *AccountService) updateSettings(ctx context.Context, weddingID string, in WeddingSettings) (core.Wedding, error) {
	w, err := s.store.GetWedding(ctx, weddingID)
	if err != nil {
		return core.Wedding{}, fmt.Errorf("update settings: %w", err)
	}
	w.BrideName = strings.TrimSpace(in.BrideName)
	w.GroomName = strings.TrimSpace(in.GroomName)
	w.WeddingDate = in.WeddingDate
	w.Budget = in.Budget
	if err := w.Validate(); err != nil {
		return core.Wedding{}, err
	}
	w.UpdatedAt = s.now()
	if err := s.store.UpdateWedding(ctx, w); err != nil {
		return core.Wedding{}, fmt.Errorf("update settings: %w", err)
	}
	s.publish(ctx, amqp.WeddingUpdated, w.ID, w.ID)
	return w, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// merge copies the fields of a ValidationErrors into dst.
func merge(dst core.ValidationErrors, err error) {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		for field, msg := range verrs {
			dst.Add(field, msg)
		}
	}
}
