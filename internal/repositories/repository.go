package repositories

import "context"

// Repository aggregates all sub-repositories behind one interface so the
// service layer never touches gorm directly.
type Repository interface {
	// Assessment domain
	Assessment() AssessmentRepository
	Question() QuestionRepository

	// Attempt domain
	UserAssessment() UserAssessmentRepository
	Answer() AnswerRepository

	// Student domain
	Enrollment() EnrollmentRepository
	Student() StudentRepository

	// File storage metadata
	File() FileRepository

	// User domain
	User() UserRepository

	// Transaction support. The callback receives a Repository whose
	// sub-repositories are scoped to one transaction; returning an error
	// rolls everything back.
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
