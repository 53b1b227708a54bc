// ABOUTME: Demo user seeding for local development environments
// ABOUTME: Creates one account per plan with well-known credentials

package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/mk7/tradebot-backend/internal/auth"
	"github.com/mk7/tradebot-backend/internal/store"
)

// demoUsers are the well-known development accounts, one per plan.
var demoUsers = []struct {
	email    string
	password string
	fullName string
	plan     store.Plan
}{
	{"admin@mk7.com", "admin123", "Admin User", store.PlanAdmin},
	{"premium@mk7.com", "premium123", "Premium User", store.PlanPremium},
	{"basic@mk7.com", "basic123", "Basic User", store.PlanBasic},
}

// SeedDemoUsers creates the demo accounts if they don't already exist.
// Safe to run repeatedly. Returns the number of accounts created.
func (s *Service) SeedDemoUsers(ctx context.Context) (int, error) {
	created := 0
	for _, d := range demoUsers {
		hash, err := auth.HashPassword(d.password)
		if err != nil {
			return created, fmt.Errorf("hashing demo password: %w", err)
		}

		user := &store.User{
			Email:        d.email,
			PasswordHash: hash,
			FullName:     d.fullName,
			Plan:         d.plan,
			Active:       true,
		}
		err = s.users.CreateUser(ctx, user)
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("demo user already exists", "email", d.email)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("creating demo user %s: %w", d.email, err)
		}

		created++
		s.logger.Info("seeded demo user", "email", d.email, "plan", d.plan)
	}
	return created, nil
}
