package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type BootstrapService interface {
	// Bootstrap reconciles a just-authenticated identity with whitelist and
	// admin status into a durable profile. Safe to run on every sign-in:
	// creation is an idempotent upsert and enrollment only grows through
	// this path (union merge), except when whitelist status is revoked for a
	// non-admin.
	Bootstrap(ctx context.Context, email, displayName string, claimsAdmin bool) (*types.User, error)
}

type bootstrapService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	whitelistRepo repos.WhitelistRepo
	// adminEmail is the fixed admin identity recognized alongside the
	// privileged claim.
	adminEmail string
}

func NewBootstrapService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	whitelistRepo repos.WhitelistRepo,
	adminEmail string,
) BootstrapService {
	return &bootstrapService{
		db:            db,
		log:           log.With("service", "BootstrapService"),
		userRepo:      userRepo,
		whitelistRepo: whitelistRepo,
		adminEmail:    adminEmail,
	}
}

func (s *bootstrapService) Bootstrap(ctx context.Context, email, displayName string, claimsAdmin bool) (*types.User, error) {
	if email == "" {
		return nil, fmt.Errorf("bootstrap: %w", errors.ErrInvalidArgument)
	}

	var result *types.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.whitelistRepo.GetByEmail(ctx, tx, email)
		if err != nil {
			return fmt.Errorf("whitelist lookup: %w", err)
		}
		isAdmin := claimsAdmin || (s.adminEmail != "" && email == s.adminEmail)

		users, err := s.userRepo.GetByEmails(ctx, tx, []string{email})
		if err != nil {
			return fmt.Errorf("profile lookup: %w", err)
		}

		now := time.Now()
		if len(users) == 0 {
			user := newProfile(email, displayName, entry, isAdmin, now)
			if _, err := s.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
			s.log.Info("provisioned new profile", "email", email, "role", user.Role, "isAdmin", isAdmin)
			result = user
			return nil
		}

		user := users[0]
		ReconcileProfile(user, entry, isAdmin, now)
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newProfile(email, displayName string, entry *types.WhitelistEntry, isAdmin bool, now time.Time) *types.User {
	user := &types.User{
		ID:            uuid.New(),
		Email:         email,
		DisplayName:   displayName,
		Role:          types.RoleStudent,
		IsAdmin:       isAdmin,
		IsWhitelisted: entry != nil || isAdmin,
		LastLoginAt:   &now,
	}
	if entry != nil {
		if entry.Role != "" {
			user.Role = entry.Role
		}
		user.Classes = append(user.Classes, entry.Classes...)
		sort.Strings(user.Classes)
	}
	if isAdmin {
		user.Role = types.RoleAdmin
	}
	return user
}

// ReconcileProfile applies one bootstrap pass to an existing profile. The
// merge rule is explicit: enrollment is the union of current classes and
// whitelist-declared classes and never shrinks here. The one exception is
// whitelist revocation, which clears enrollment for non-admins only.
func ReconcileProfile(user *types.User, entry *types.WhitelistEntry, isAdmin bool, now time.Time) {
	user.LastLoginAt = &now
	user.IsAdmin = isAdmin
	user.IsWhitelisted = entry != nil || isAdmin

	if entry != nil {
		if entry.Role != "" && !isAdmin {
			user.Role = entry.Role
		}
		user.Classes = mergeClasses(user.Classes, entry.Classes)
	}
	if isAdmin {
		user.Role = types.RoleAdmin
	}

	if !user.IsWhitelisted && !isAdmin {
		user.Classes = nil
	}
}

// mergeClasses returns the sorted union of both lists.
func mergeClasses(existing, declared []string) []string {
	set := map[string]struct{}{}
	for _, c := range existing {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	for _, c := range declared {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
