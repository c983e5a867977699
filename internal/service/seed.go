// internal/service/seed.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/internal/repository"
	"github.com/gurkanbulca/taskapproval/pkg/auth"
)

// SeedPassword is the password of every bootstrap account
const SeedPassword = "password123"

// Seeder fills an empty store with demo accounts and tasks
type Seeder struct {
	users           repository.UserRepository
	tasks           repository.TaskRepository
	passwordManager *auth.PasswordManager
	logger          *slog.Logger
	now             func() time.Time
}

func NewSeeder(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	passwordManager *auth.PasswordManager,
	logger *slog.Logger,
) *Seeder {
	if passwordManager == nil {
		passwordManager = auth.NewPasswordManager()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		users:           users,
		tasks:           tasks,
		passwordManager: passwordManager,
		logger:          logger,
		now:             time.Now,
	}
}

// Seed does nothing unless the user store is empty. It reports whether data was written.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		s.logger.Debug("seed skipped, users already present", "count", count)
		return false, nil
	}

	hash, err := s.passwordManager.HashPassword(SeedPassword)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}

	accounts := []models.User{
		{Username: "admin", Name: "Admin User", Email: "admin@booking.com", Role: models.RoleAdmin},
		{Username: "manager", Name: "Manager User", Email: "manager@booking.com", Role: models.RoleManager},
		{Username: "user", Name: "Regular User", Email: "user@booking.com", Role: models.RoleUser},
	}

	created := make(map[string]*models.User, len(accounts))
	for i := range accounts {
		u := accounts[i]
		u.PasswordHash = hash
		stored, err := s.users.Create(ctx, &u)
		if err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		created[stored.Username] = stored
	}
	s.logger.Info("seeded users", "usernames", []string{"admin", "manager", "user"})

	user, manager := created["user"], created["manager"]
	now := s.now().UTC()
	day := 24 * time.Hour
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	tasks := []*models.Task{
		{
			Title:          "Review Q4 Budget Report",
			Description:    "Review and analyze the Q4 budget report for accuracy and completeness",
			Status:         models.StatusPending,
			Priority:       models.PriorityHigh,
			AssignedUserID: manager.ID,
			CreatedBy:      user.ID,
			CreatedDate:    now.Add(-2 * day),
			ScheduledDate:  now.Add(3 * day),
		},
		{
			Title:          "Prepare Team Meeting Agenda",
			Description:    "Create agenda for the upcoming team meeting scheduled for next week",
			Status:         models.StatusPending,
			Priority:       models.PriorityMedium,
			AssignedUserID: user.ID,
			CreatedBy:      manager.ID,
			CreatedDate:    now.Add(-day),
			ScheduledDate:  now.Add(5 * day),
		},
		{
			Title:          "Update Client Database",
			Description:    "Update client contact information in the CRM system",
			Status:         models.StatusPending,
			Priority:       models.PriorityLow,
			AssignedUserID: user.ID,
			CreatedBy:      user.ID,
			CreatedDate:    now.Add(-6 * time.Hour),
			ScheduledDate:  now.Add(7 * day),
		},
		{
			Title:          "Submit Monthly Report",
			Description:    "Compile and submit the monthly performance report",
			Status:         models.StatusApproved,
			Priority:       models.PriorityHigh,
			AssignedUserID: user.ID,
			CreatedBy:      user.ID,
			CreatedDate:    now.Add(-5 * day),
			ScheduledDate:  now.Add(day),
			ApprovedBy:     &manager.ID,
			ApprovalDate:   at(-4 * day),
		},
		{
			Title:          "Organize Office Party",
			Description:    "Plan and organize the annual office party",
			Status:         models.StatusRejected,
			Priority:       models.PriorityLow,
			AssignedUserID: user.ID,
			CreatedBy:      user.ID,
			CreatedDate:    now.Add(-10 * day),
			ScheduledDate:  now.Add(30 * day),
			ApprovedBy:     &manager.ID,
			ApprovalDate:   at(-9 * day),
		},
	}

	for _, t := range tasks {
		if _, err := s.tasks.Create(ctx, t); err != nil {
			return false, fmt.Errorf("seed task %q: %w", t.Title, err)
		}
	}
	s.logger.Info("seeded tasks", "pending", 3, "approved", 1, "rejected", 1)

	return true, nil
}
