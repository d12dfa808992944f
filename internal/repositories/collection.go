// file: internal/repositories/collection.go
package repositories

import (
	"fmt"

	"referralhub/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User     UserRepository
	Job      JobRepository
	Referral ReferralRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{
		User:     NewUserRepository(db, logger),
		Job:      NewJobRepository(db, logger),
		Referral: NewReferralRepository(db, logger),
		db:       db,
		logger:   logger,
	}

	logger.Info("Repository collection initialized successfully")
	return collection, nil
}

// DB returns the underlying database manager
func (c *Collection) DB() *database.Manager {
	return c.db
}
