package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/netgen/internal/models"
)

// SQLiteGraphStore implements GraphStore using SQLite for persistence.
type SQLiteGraphStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteGraphStore opens or creates the database at dbPath.
func NewSQLiteGraphStore(dbPath string) (*SQLiteGraphStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteGraphStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteGraphStore) Path() string {
	return s.dbPath
}

// AddNode adds a node to the store.
func (s *SQLiteGraphStore) AddNode(ctx context.Context, node Node) (string, error) {
	if node.ID == "" {
		return "", fmt.Errorf("node ID is required")
	}

	contentJSON, err := json.Marshal(node.Content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}
	var metadataJSON []byte
	if node.Metadata != nil {
		if metadataJSON, err = json.Marshal(node.Metadata); err != nil {
			return "", fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (id, kind, content, metadata) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind, content = excluded.content, metadata = excluded.metadata
	`, node.ID, node.Kind, string(contentJSON), nullBytes(metadataJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert node: %w", err)
	}
	return node.ID, nil
}

// GetNode retrieves a node by ID. Returns nil if not found.
func (s *SQLiteGraphStore) GetNode(ctx context.Context, id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT id, kind, content, metadata FROM nodes WHERE id = ?`, id)
	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node %s: %w", id, err)
	}
	return node, nil
}

// QueryNodes returns nodes matching the predicate.
func (s *SQLiteGraphStore) QueryNodes(ctx context.Context, predicate map[string]interface{}) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// kind and id filter in SQL, everything else on the decoded content
	var whereClauses []string
	var args []interface{}
	for key, value := range predicate {
		switch key {
		case "kind", "id":
			whereClauses = append(whereClauses, key+" = ?")
			args = append(args, value)
		}
	}

	query := `SELECT id, kind, content, metadata FROM nodes`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]Node, 0)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		if matchesPredicate(*node, predicate) {
			nodes = append(nodes, *node)
		}
	}
	return nodes, rows.Err()
}

// AddEdge adds an edge to the store.
func (s *SQLiteGraphStore) AddEdge(ctx context.Context, edge Edge) error {
	if edge.Source == "" || edge.Target == "" {
		return fmt.Errorf("edge source and target are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edges (source, target, kind, name, receptor, connectivity, efficacy, stft, stfp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, edge.Source, edge.Target, edge.Kind, nullString(edge.Name), edge.Receptor,
		edge.Connectivity, edge.Efficacy, edge.STFT, edge.STFP)
	if err != nil {
		return fmt.Errorf("failed to add edge: %w", err)
	}
	return nil
}

// GetEdges returns edges connected to a node.
func (s *SQLiteGraphStore) GetEdges(ctx context.Context, nodeID string, direction Direction, kind string) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT source, target, kind, name, receptor, connectivity, efficacy, stft, stfp FROM edges WHERE 1 = 1`
	var args []interface{}

	if nodeID != "" {
		switch direction {
		case DirectionOutbound:
			query += " AND source = ?"
			args = append(args, nodeID)
		case DirectionInbound:
			query += " AND target = ?"
			args = append(args, nodeID)
		case DirectionBoth:
			query += " AND (source = ? OR target = ?)"
			args = append(args, nodeID, nodeID)
		default:
			return nil, fmt.Errorf("unknown direction: %s", direction)
		}
	}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	edges := make([]Edge, 0)
	for rows.Next() {
		var e Edge
		var name sql.NullString
		if err := rows.Scan(&e.Source, &e.Target, &e.Kind, &name, &e.Receptor,
			&e.Connectivity, &e.Efficacy, &e.STFT, &e.STFP); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Name = name.String
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// AddEvent appends an event.
func (s *SQLiteGraphStore) AddEvent(ctx context.Context, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (time, type, label, population, receptor, freq) VALUES (?, ?, ?, ?, ?, ?)
	`, event.Time, event.Type, nullString(event.Label), nullString(event.Population),
		nullString(event.Receptor), event.Freq)
	if err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}
	return nil
}

// Events returns every stored event.
func (s *SQLiteGraphStore) Events(ctx context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT time, type, label, population, receptor, freq FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		var label, pop, receptor sql.NullString
		if err := rows.Scan(&ev.Time, &ev.Type, &label, &pop, &receptor, &ev.Freq); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Label, ev.Population, ev.Receptor = label.String, pop.String, receptor.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// SetMeta records a metadata entry.
func (s *SQLiteGraphStore) SetMeta(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta returns a metadata entry, "" if unset.
func (s *SQLiteGraphStore) GetMeta(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}

// Clear empties every data table in one transaction.
func (s *SQLiteGraphStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range dataTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteGraphStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*Node, error) {
	var (
		node         Node
		contentJSON  string
		metadataJSON sql.NullString
	)
	if err := row.Scan(&node.ID, &node.Kind, &contentJSON, &metadataJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(contentJSON), &node.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}
	if metadataJSON.Valid {
		if err := json.Unmarshal([]byte(metadataJSON.String), &node.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &node, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
