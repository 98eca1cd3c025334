package repositories

import "context"

// Repository aggregates the per-aggregate repositories. WithTransaction hands
// the callback a Repository bound to one database transaction; every write
// the restriction engine performs goes through such a callback so a failure
// partway through a cascade rolls back entirely.
type Repository interface {
	Restriction() RestrictionRepository
	Enrollment() EnrollmentRepository
	Chat() ChatRepository

	// Directory reads (owned by other services, consumed here)
	Course() CourseRepository
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
