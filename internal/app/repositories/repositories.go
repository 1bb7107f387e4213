package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/studentrecords/internal/config"
	"github.com/yigit/studentrecords/internal/db"
)

// Repositories holds the repository instances and the connection behind them
type Repositories struct {
	StudentRepository StudentRepository

	closeFn func()
	pingFn  func(ctx context.Context) error
}

// NewMongoRepositories builds the repositories on a MongoDB database and
// makes sure the student indexes exist
func NewMongoRepositories(ctx context.Context, mongoDB *db.MongoDB, cfg *config.Config) (*Repositories, error) {
	students := NewMongoStudentRepository(mongoDB.Database.Collection(cfg.Database.Collection))
	if err := students.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return &Repositories{
		StudentRepository: students,
		closeFn:           mongoDB.Close,
		pingFn:            mongoDB.Ping,
	}, nil
}

// NewPostgresRepositories builds the repositories on a PostgreSQL pool
func NewPostgresRepositories(pg *db.PostgresDB) *Repositories {
	return &Repositories{
		StudentRepository: NewPostgresStudentRepository(pg),
		closeFn:           pg.Close,
		pingFn:            pg.Ping,
	}
}

// NewRepositories wraps an existing student repository, used by tests
func NewRepositories(students StudentRepository) *Repositories {
	return &Repositories{StudentRepository: students}
}

// Ping checks the underlying connection
func (r *Repositories) Ping(ctx context.Context) error {
	if r.pingFn == nil {
		return nil
	}
	if err := r.pingFn(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Close releases the underlying connection
func (r *Repositories) Close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}
