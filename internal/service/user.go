package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"saha-erp/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"

	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
)

var (
	// ErrBadCredentials covers both an unknown username and a wrong password.
	ErrBadCredentials = errors.New("invalid username or password")
	ErrAccountLocked  = errors.New("account locked, try again later")

	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
)

type UserService struct {
	db   *gorm.DB
	now  func() time.Time
	cost int
}

// NewUser describes a staff account to create.
type NewUser struct {
	Username    string
	Password    string
	DisplayName string
	Role        string
}

// isStrongPassword: 8-32 characters with upper case, lower case and a digit.
func isStrongPassword(pwd string) bool {
	if len(pwd) < 8 || len(pwd) > 32 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

func (s *UserService) hash(pwd string) (string, error) {
	cost := s.cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *UserService) Create(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if !usernameRe.MatchString(in.Username) {
		return nil, invalid("username", "must be 3-20 letters, digits or underscores")
	}
	if !isStrongPassword(in.Password) {
		return nil, invalid("password", "must be 8-32 characters with upper case, lower case and a digit")
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, invalid("role", "must be admin or staff")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", in.Username).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, invalid("username", "already exists")
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks the credentials. Five consecutive failures lock the
// account for ten minutes.
func (s *UserService) Authenticate(ctx context.Context, username, password, ip string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		u.FailedLoginAttempts++
		if u.FailedLoginAttempts >= maxFailedLogins {
			until := now.Add(lockDuration)
			u.LockedUntil = &until
			u.FailedLoginAttempts = 0
		}
		if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		return nil, ErrBadCredentials
	}

	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return &u, nil
}

// UpdateProfile changes the display name of user id.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, displayName string) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 64 {
		return nil, invalid("displayName", "must be at most 64 characters")
	}
	if err := s.db.WithContext(ctx).Model(u).Update("display_name", displayName).Error; err != nil {
		return nil, fmt.Errorf("update profile of user %d: %w", id, err)
	}
	u.DisplayName = displayName
	return u, nil
}

// ChangePassword replaces the password of user id after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return invalid("oldPassword", "is incorrect")
	}
	if oldPassword == newPassword {
		return invalid("newPassword", "must differ from the old password")
	}
	return s.storePassword(ctx, u, newPassword)
}

// SetPassword resets the password of the named account and lifts any lock.
func (s *UserService) SetPassword(ctx context.Context, username, password string) error {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).
		First(&u).Error
	if err != nil {
		return lookupErr(err, "user", username)
	}
	return s.storePassword(ctx, &u, password)
}

func (s *UserService) storePassword(ctx context.Context, u *models.User, password string) error {
	if !isStrongPassword(password) {
		return invalid("password", "must be 8-32 characters with upper case, lower case and a digit")
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(u).Updates(map[string]any{
		"password_hash":         hash,
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
	if err != nil {
		return fmt.Errorf("update password of user %d: %w", u.ID, err)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return &u, nil
}

// AuditLogs pages through the audit trail, newest first.
func (s *UserService) AuditLogs(ctx context.Context, page, pageSize int) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}
	list := []models.AuditLog{}
	if err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return list, total, nil
}

// RecordAudit stores one audit row.
func (s *UserService) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record audit log: %w", err)
	}
	return nil
}
