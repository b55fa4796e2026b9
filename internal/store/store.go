// Package store exports a finished property graph to a SQLite database
// so downstream tools can query it with SQL. The export is write-only:
// each run rebuilds the database from scratch and no run reads one back.
package store

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/hargabyte/cpg/internal/cpg"
)

// schemaSQL defines the SQLite schema for the graph export.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
    id INTEGER PRIMARY KEY,           -- insertion index
    label TEXT NOT NULL,              -- display label
    kind TEXT NOT NULL,               -- Function, Call, BasicBlock, ...
    line INTEGER,                     -- 1-based source line, NULL if unknown
    usr TEXT,                         -- unified symbol reference
    type_info TEXT                    -- textual declared type
);

CREATE TABLE IF NOT EXISTS edges (
    seq INTEGER PRIMARY KEY,          -- insertion order
    from_id INTEGER NOT NULL,
    to_id INTEGER NOT NULL,
    kind TEXT NOT NULL,               -- Contains, Calls, Uses, ...
    FOREIGN KEY (from_id) REFERENCES nodes(id),
    FOREIGN KEY (to_id) REFERENCES nodes(id)
);

CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);
`

// Export writes the graph to a SQLite database at path, replacing any
// existing file.
func Export(g *cpg.Graph, path string) error {
	// A fresh file per run keeps the export equal to the graph.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale database %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	nodeStmt, err := tx.Prepare(
		"INSERT INTO nodes (id, label, kind, line, usr, type_info) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i := 0; i < g.NodeCount(); i++ {
		node := g.Node(cpg.NodeID(i))
		var line any
		if node.Line > 0 {
			line = node.Line
		}
		if _, err := nodeStmt.Exec(i, node.Name, node.Kind.String(), line, node.USR, node.TypeInfo); err != nil {
			return fmt.Errorf("inserting node %d: %w", i, err)
		}
	}

	edgeStmt, err := tx.Prepare(
		"INSERT INTO edges (seq, from_id, to_id, kind) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, edge := range g.Edges() {
		if _, err := edgeStmt.Exec(i, int(edge.From), int(edge.To), edge.Kind.String()); err != nil {
			return fmt.Errorf("inserting edge %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}
