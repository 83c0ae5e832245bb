package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB       Pinger
	Database string
	Store    string
}

// NewService constructs a new health service. A nil db reports the in-memory repository.
func NewService(db Pinger, database, store string) *Service {
	if database == "" {
		database = "memory"
	}
	return &Service{DB: db, Database: database, Store: store}
}

// Status reports whether the record store answers and which backends are in use.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{
		"ok":       true,
		"database": s.Database,
		"store":    s.Store,
	}
	if s.DB == nil {
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out["ok"] = false
		out["error"] = err.Error()
	}
	return out
}
