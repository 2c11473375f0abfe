// Package repository archives feed entities and vote results in PostgreSQL.
package repository

import (
	"fmt"

	"github.com/yourusername/boatrace-vote/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Entities    EntityRepository
	VoteResults VoteResultRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Entities:    NewPostgresEntityRepository(db),
		VoteResults: NewPostgresVoteResultRepository(db),
	}, nil
}
