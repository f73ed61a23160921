package submission

import (
	"context"
	"strings"
)

// NewStore picks the backend: postgres when a database URL is configured,
// the local SQLite file when a path is, in-memory otherwise.
func NewStore(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	if strings.TrimSpace(sqlitePath) != "" {
		return NewSQLiteStore(sqlitePath)
	}
	return NewInMemoryStore(), nil
}
