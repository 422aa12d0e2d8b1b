package store

import "fmt"

// NewStore opens a store backend by name: "memory" (the default) or
// "sqlite" at dbPath.
func NewStore(kind, dbPath string) (GraphStore, error) {
	switch kind {
	case "", "memory":
		return NewInMemoryGraphStore(), nil
	case "sqlite":
		if dbPath == "" {
			return nil, fmt.Errorf("sqlite store requires a database path")
		}
		return NewSQLiteGraphStore(dbPath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
