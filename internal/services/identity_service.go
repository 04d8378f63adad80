package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenTTL  = time.Hour
	sessionTTL     = 24 * time.Hour
	minPasswordLen = 8
)

type CreateUserRequest struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     string    `json:"role"`
}

type UpdateUserRequest struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type IdentityService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*models.User, error)
	DeactivateUser(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteUser(ctx context.Context, tenantID, id uuid.UUID) error
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) (*models.PasswordResetToken, error)
	RedeemResetToken(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, current, updated string) error
}

type identityService struct {
	db         Store
	userRepo   repositories.UserRepository
	tokenRepo  repositories.ResetTokenRepository
	tenantRepo repositories.TenantRepository
	subs       SubscriptionService
	cache      TenantCache
	jwtSecret  []byte
}

func NewIdentityService(db Store, userRepo repositories.UserRepository,
	tokenRepo repositories.ResetTokenRepository, tenantRepo repositories.TenantRepository,
	subs SubscriptionService, cache TenantCache, jwtSecret []byte) IdentityService {
	return &identityService{
		db:         db,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		tenantRepo: tenantRepo,
		subs:       subs,
		cache:      cache,
		jwtSecret:  jwtSecret,
	}
}

// CreateUser admits a user against the tenant's seat limit. The subscription
// row is locked for the length of the transaction, so two concurrent creates
// at limit-1 cannot both pass the count check.
func (s *identityService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if req.Role == "" {
		req.Role = "SALES"
	}
	if err := common.ValidateEnum(req.Role, common.UserRoles, "role"); err != nil {
		return nil, err
	}
	guard := tenantGuard{tenantRepo: s.tenantRepo, cache: s.cache}
	if _, err := guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.subs.EnforceSeatLimit(ctx, tx, req.TenantID); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       "active",
	}
	if err := repositories.NewUserRepo(tx).Create(ctx, user); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *identityService) GetUser(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, tenantID, id)
}

func (s *identityService) ListUsers(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.userRepo.List(ctx, tenantID, limit, offset)
}

func (s *identityService) UpdateUser(ctx context.Context, req UpdateUserRequest) (*models.User, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return nil, err
	}
	if err := common.ValidateEnum(req.Role, common.UserRoles, "role"); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.AvatarURL = req.AvatarURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser frees the seat without touching the user's records.
func (s *identityService) DeactivateUser(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.userRepo.UpdateStatus(ctx, tenantID, id, "inactive")
}

// DeleteUser removes the user; outstanding reset tokens cascade at the store.
func (s *identityService) DeleteUser(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, tenantID, id)
}

// Authenticate verifies credentials and issues a session token. Lookup and
// password failures collapse into one error so callers cannot probe for
// registered emails.
func (s *identityService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if user.Status != "active" {
		return nil, common.ErrInvalidCredentials
	}

	guard := tenantGuard{tenantRepo: s.tenantRepo, cache: s.cache}
	tenant, err := guard.resolveTenant(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	switch tenant.Status {
	case "suspended":
		return nil, fmt.Errorf("tenant %s: %w", tenant.ID, common.ErrTenantSuspended)
	case "cancelled":
		return nil, fmt.Errorf("tenant %s: %w", tenant.ID, common.ErrTenantCancelled)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *identityService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"tenant_id": user.TenantID.String(),
		"role":      user.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(sessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// RequestPasswordReset mints a single-use token valid for one hour. The raw
// token is returned for delivery; only the issuing path ever sees it.
func (s *identityService) RequestPasswordReset(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	token := &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// RedeemResetToken consumes the token and sets the new password in one
// transaction. The row lock serializes double redemption: the second caller
// sees used = true and fails.
func (s *identityService) RedeemResetToken(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tokens := repositories.NewResetTokenRepo(tx)
	t, err := tokens.GetByTokenForUpdate(ctx, token)
	if err != nil {
		return err
	}
	if t.Used {
		return common.ErrTokenAlreadyUsed
	}
	if time.Now().After(t.ExpiresAt) {
		return common.ErrTokenExpired
	}
	if err := tokens.MarkUsed(ctx, t.ID); err != nil {
		return err
	}
	if err := repositories.NewUserRepo(tx).UpdatePassword(ctx, t.UserID, string(hash), false); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ChangePassword verifies the current password before setting the new one,
// then revokes any outstanding reset tokens.
func (s *identityService) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, current, updated string) error {
	if len(updated) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	user, err := s.userRepo.GetByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return common.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(updated), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash), false); err != nil {
		return err
	}
	return s.tokenRepo.DeleteByUser(ctx, userID)
}
