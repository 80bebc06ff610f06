package user

import "context"

// Repository - interface for the users table
type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetActiveByRole returns active users with the given role.
	GetActiveByRole(ctx context.Context, role Role) ([]User, error)
	// GetManagerOf returns the reporting manager of the given employee,
	// or ErrUserNotFound when none is assigned.
	GetManagerOf(ctx context.Context, employeeID string) (User, error)
}
