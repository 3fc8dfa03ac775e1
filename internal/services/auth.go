package services

import (
	"context"
	"errors"
	"juba-homez/internal/config"
	"juba-homez/internal/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Role     string
	Email    string
	Password string
	Name     string
	Phone    string
}

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *TokenService
	audit  *AuditService
	now    func() time.Time

	// compared against when no account matches, so unknown emails cost one bcrypt round too
	dummyHash []byte
	compare   func(hash, password []byte) error
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tokens *TokenService, audit *AuditService) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		tokens: tokens,
		audit:  audit,
		now:    time.Now,

		dummyHash: dummyPasswordHash(cfg.Security.BcryptCost),
		compare:   bcrypt.CompareHashAndPassword,
	}
}

func dummyPasswordHash(cost int) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		hash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	}
	return hash
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.Security.BcryptCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	return s.compare([]byte(hashedPassword), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. Customers are active at once and get a token;
// every other role waits for admin approval and gets no token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *string, error) {
	role := strings.TrimSpace(in.Role)
	if !isSelfServiceRole(role) {
		return nil, nil, invalidInput("role %q cannot be chosen at registration", in.Role)
	}
	email := normalizeEmail(in.Email)

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	status := models.UserPending
	if role == models.RoleCustomer {
		status = models.UserActive
	}

	user := &models.User{
		Role:         role,
		Status:       status,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(user.ID),
			Action:     ActionUserRegistered,
			EntityType: models.EntityUser,
			EntityID:   user.ID,
			Meta:       models.JSONMap{"role": user.Role, "status": user.Status},
		})
	})
	if err != nil {
		return nil, nil, err
	}

	if user.Status != models.UserActive {
		return user, nil, nil
	}
	token, _, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return user, &token, nil
}

func isSelfServiceRole(role string) bool {
	for _, r := range models.SelfServiceRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Login checks, in order: lockout, password, account status.
// Failed attempts are counted under a row lock and committed even though the login fails.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var (
		user    models.User
		outcome error
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.VerifyPassword(string(s.dummyHash), password)
				outcome = ErrInvalidCredentials
				return nil
			}
			return err
		}

		now := s.now()
		if user.IsLocked(now) {
			outcome = ErrTemporarilyLocked
			return nil
		}

		if !s.VerifyPassword(user.PasswordHash, password) {
			outcome = ErrInvalidCredentials
			return s.recordFailedLogin(tx, &user, now)
		}

		if user.Status != models.UserActive {
			outcome = ErrAccountNotActive
			return nil
		}

		if err := s.recordSuccessfulLogin(tx, &user); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(user.ID),
			Action:     ActionUserLoggedIn,
			EntityType: models.EntityUser,
			EntityID:   user.ID,
			Meta:       models.JSONMap{"session_id": uuid.NewString()},
		})
	})
	if err != nil {
		return nil, "", err
	}
	if outcome != nil {
		return nil, "", outcome
	}

	token, _, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// recordFailedLogin bumps the counter; at the threshold it locks the account and resets the counter.
func (s *AuthService) recordFailedLogin(tx *gorm.DB, user *models.User, now time.Time) error {
	attempts := user.FailedLoginAttempts + 1
	updates := map[string]interface{}{"failed_login_attempts": attempts}

	if attempts >= s.cfg.Security.MaxFailedLogins {
		lockedUntil := now.Add(s.cfg.LockoutDuration())
		updates["failed_login_attempts"] = 0
		updates["locked_until"] = lockedUntil
		user.LockedUntil = &lockedUntil
		attempts = 0
	}
	user.FailedLoginAttempts = attempts

	return tx.Model(user).Updates(updates).Error
}

func (s *AuthService) recordSuccessfulLogin(tx *gorm.DB, user *models.User) error {
	if user.FailedLoginAttempts == 0 && user.LockedUntil == nil {
		return nil
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	return tx.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
}

// ForgotPassword stores a reset token when the email is known. An unknown
// email is not an error and yields an empty token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.cfg.PasswordResetTTL()),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reset).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(user.ID),
			Action:     ActionPasswordResetRequested,
			EntityType: models.EntityUser,
			EntityID:   user.ID,
		})
	})
	if err != nil {
		return "", err
	}
	return reset.Token, nil
}

// ResetPassword consumes a reset token, sets the new password and lifts any lockout.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		if err := lockForUpdate(tx).Where("token = ?", strings.TrimSpace(token)).First(&reset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if reset.UsedAt != nil {
			return ErrInvalidResetToken
		}
		now := s.now()
		if now.After(reset.ExpiresAt) {
			return ErrResetTokenExpired
		}

		res := tx.Model(&models.User{}).Where("id = ?", reset.UserID).Updates(map[string]interface{}{
			"password_hash":         hash,
			"failed_login_attempts": 0,
			"locked_until":          nil,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidResetToken
		}

		if err := tx.Model(&reset).Update("used_at", now).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(reset.UserID),
			Action:     ActionPasswordResetCompleted,
			EntityType: models.EntityUser,
			EntityID:   reset.UserID,
		})
	})
}

// CreateDefaultAdmin bootstraps an admin account when none exists and one is configured.
func (s *AuthService) CreateDefaultAdmin(ctx context.Context) (*models.User, error) {
	admin := s.cfg.DefaultAdmin
	if admin.Email == "" || admin.Password == "" {
		return nil, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	hash, err := s.HashPassword(admin.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Role:         models.RoleAdmin,
		Status:       models.UserActive,
		Name:         admin.Name,
		Email:        normalizeEmail(admin.Email),
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect has it.
// SQLite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
