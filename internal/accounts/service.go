// Package accounts implements registration, login, token resolution and
// account management.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
)

// decoyPassword is hashed once at startup and compared against when a login
// names an unknown email, so both failure paths cost one bcrypt comparison.
const decoyPassword = "storefront-decoy-credential"

// Session is an account summary plus a freshly signed token.
type Session struct {
	models.AccountSummary
	Token string `json:"token"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileUpdate carries self-service changes. Blank fields keep the current value.
type ProfileUpdate struct {
	Name     string
	Email    string
	Password string
}

// AdminUpdate carries administrator changes. A nil IsAdmin keeps the flag.
type AdminUpdate struct {
	Name    string
	Email   string
	IsAdmin *bool
}

type Service struct {
	accounts  store.AccountStore
	hasher    auth.PasswordHasher
	tokens    auth.TokenSigner
	log       *zap.Logger
	decoyHash string
}

func NewService(accounts store.AccountStore, hasher auth.PasswordHasher, tokens auth.TokenSigner, log *zap.Logger) (*Service, error) {
	decoy, err := hasher.Hash(decoyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare decoy hash: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		log:       log.Named("accounts"),
		decoyHash: decoy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	return oid, err == nil
}

func (s *Service) session(account models.Account) (Session, error) {
	token, err := s.tokens.Sign(account.ID.Hex())
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{AccountSummary: account.Summary(), Token: token}, nil
}

// Authenticate checks credentials. Unknown email and wrong password fail the
// same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.hasher.Verify(password, s.decoyHash)
		return Session{}, apperr.ErrInvalidCredentials
	case err != nil:
		return Session{}, fmt.Errorf("find account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return Session{}, apperr.ErrInvalidCredentials
	}
	s.log.Info("account authenticated", zap.String("accountId", account.ID.Hex()))
	return s.session(account)
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	fields := map[string]any{}
	if name == "" {
		fields["name"] = "name is required"
	}
	if email == "" {
		fields["email"] = "email is required"
	}
	if in.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return Session{}, apperr.Validation("Name, email and password are required").WithDetails(fields)
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return Session{}, apperr.ErrEmailInUse
	} else if !errors.Is(err, store.ErrNotFound) {
		return Session{}, fmt.Errorf("find account: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{Name: name, Email: email, PasswordHash: hash, IsAdmin: false}
	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Session{}, apperr.ErrEmailInUse
		}
		return Session{}, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account registered", zap.String("accountId", account.ID.Hex()))
	return s.session(account)
}

// ResolveActor verifies a bearer token and loads the account it names.
func (s *Service) ResolveActor(ctx context.Context, token string) (auth.Actor, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Actor{}, apperr.ErrTokenFailed.Wrap(err)
	}
	id, ok := parseID(claims.AccountID)
	if !ok {
		return auth.Actor{}, apperr.ErrTokenFailed
	}

	account, err := s.accounts.FindByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return auth.Actor{}, apperr.ErrTokenFailed.Wrap(err)
	case err != nil:
		return auth.Actor{}, fmt.Errorf("load actor: %w", err)
	}

	return auth.Actor{
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
		IsAdmin:   account.IsAdmin,
	}, nil
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.Account{}, apperr.ErrUserNotFound
	case err != nil:
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *Service) save(ctx context.Context, account *models.Account) error {
	err := s.accounts.Update(ctx, account)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return apperr.ErrEmailInUse
	case errors.Is(err, store.ErrNotFound):
		return apperr.ErrUserNotFound
	case err != nil:
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, actor auth.Actor) (models.Account, error) {
	return s.load(ctx, actor.AccountID)
}

// UpdateProfile applies self-service changes and returns a fresh session.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, in ProfileUpdate) (Session, error) {
	account, err := s.load(ctx, actor.AccountID)
	if err != nil {
		return Session{}, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		account.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" {
		account.Email = email
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return Session{}, fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	if err := s.save(ctx, &account); err != nil {
		return Session{}, err
	}
	return s.session(account)
}

// UpdateShippingAddress merges the non-blank fields into the saved address.
func (s *Service) UpdateShippingAddress(ctx context.Context, actor auth.Actor, patch models.ShippingAddress) (models.Account, error) {
	account, err := s.load(ctx, actor.AccountID)
	if err != nil {
		return models.Account{}, err
	}

	var current models.ShippingAddress
	if account.ShippingAddress != nil {
		current = *account.ShippingAddress
	}
	merged := current.Merge(patch)
	account.ShippingAddress = &merged

	if err := s.save(ctx, &account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func requireAdmin(actor auth.Actor) error {
	if !actor.IsAdmin {
		return apperr.ErrNotAdmin
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor) ([]models.Account, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (models.Account, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Account{}, err
	}
	oid, ok := parseID(id)
	if !ok {
		return models.Account{}, apperr.ErrUserNotFound
	}
	return s.load(ctx, oid)
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, in AdminUpdate) (models.Account, error) {
	account, err := s.Get(ctx, actor, id)
	if err != nil {
		return models.Account{}, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		account.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" {
		account.Email = email
	}
	if in.IsAdmin != nil {
		account.IsAdmin = *in.IsAdmin
	}

	if err := s.save(ctx, &account); err != nil {
		return models.Account{}, err
	}
	s.log.Info("account updated by admin",
		zap.String("accountId", account.ID.Hex()),
		zap.String("adminId", actor.AccountID.Hex()),
		zap.Bool("isAdmin", account.IsAdmin),
	)
	return account, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	oid, ok := parseID(id)
	if !ok {
		return apperr.ErrUserNotFound
	}

	err := s.accounts.Delete(ctx, oid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.ErrUserNotFound
	case err != nil:
		return fmt.Errorf("delete account: %w", err)
	}
	s.log.Info("account deleted", zap.String("accountId", id), zap.String("adminId", actor.AccountID.Hex()))
	return nil
}
