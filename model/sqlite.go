package model

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rushteam/topicrec/vector"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id    INTEGER PRIMARY KEY,
		title TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS doc_topic (
		id      INTEGER PRIMARY KEY,
		weights BLOB NOT NULL
	)`,
}

// LoadSQLite 从 SQLite 产物读取模型。
// items 表给出 id 与标题，doc_topic 表给出每个 id 的主题权重（vector.EncodeWeights 编码）。
func LoadSQLite(ctx context.Context, path string) (*TopicModel, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	titleToID := make(map[string]int)
	idToTitle := make(map[int]string)
	var titles []string

	rows, err := db.QueryContext(ctx, `SELECT id, title FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	for rows.Next() {
		var (
			id    int
			title string
		)
		if err := rows.Scan(&id, &title); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		titleToID[title] = id
		idToTitle[id] = title
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("read items: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	matrix := make([][]float64, 0, len(titles))
	rows, err = db.QueryContext(ctx, `SELECT id, weights FROM doc_topic ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query doc_topic: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   int
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scan doc_topic: %w", err)
		}
		if id != len(matrix) {
			return nil, invalidArtifact("doc_topic row id %d out of sequence (want %d)", id, len(matrix))
		}
		vec, err := vector.DecodeWeights(blob)
		if err != nil {
			return nil, invalidArtifact("doc_topic row %d: %v", id, err)
		}
		matrix = append(matrix, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read doc_topic: %w", err)
	}

	return NewTopicModel(titleToID, idToTitle, titles, matrix)
}

// WriteSQLite 将模型写入 SQLite 产物，已存在的表会被清空后重写。
func WriteSQLite(ctx context.Context, path string, m *TopicModel) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"items", "doc_topic"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO items (id, title) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare items: %w", err)
	}
	defer itemStmt.Close()
	vecStmt, err := tx.PrepareContext(ctx, `INSERT INTO doc_topic (id, weights) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare doc_topic: %w", err)
	}
	defer vecStmt.Close()

	for id, title := range m.idToTitle {
		if _, err := itemStmt.ExecContext(ctx, id, title); err != nil {
			return fmt.Errorf("insert item %d: %w", id, err)
		}
		if _, err := vecStmt.ExecContext(ctx, id, vector.EncodeWeights(m.matrix[id])); err != nil {
			return fmt.Errorf("insert doc_topic %d: %w", id, err)
		}
	}
	return tx.Commit()
}
