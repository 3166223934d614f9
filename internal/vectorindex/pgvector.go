package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorIndex stores vectors in a Postgres table with a pgvector
// embedding column. One row per chunk, keyed by the deterministic
// record id.
type PgVectorIndex struct {
	db        *pgxpool.Pool
	table     string
	dimension int
}

func NewPgVectorIndex(db *pgxpool.Pool, table string, dimension int) *PgVectorIndex {
	if table == "" {
		table = "document_vectors"
	}
	return &PgVectorIndex{db: db, table: table, dimension: dimension}
}

// EnsureSchema creates the vector extension and the vectors table if
// they do not exist. The embedding column dimension is fixed at
// creation; a mismatch with the configured embedding model surfaces as
// an upsert failure, not a silent truncation.
func (s *PgVectorIndex) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	_, err := s.db.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id          text PRIMARY KEY,
			file_id     text NOT NULL,
			chunk_index int  NOT NULL,
			page        int  NOT NULL,
			content     text NOT NULL DEFAULT '',
			embedding   vector(%d) NOT NULL
		)`, s.table, s.dimension))
	if err != nil {
		return fmt.Errorf("create vectors table: %w", err)
	}

	_, err = s.db.Exec(ctx, fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s_file_id_idx ON %s (file_id)", s.table, s.table))
	if err != nil {
		return fmt.Errorf("create file_id index: %w", err)
	}
	return nil
}

func (s *PgVectorIndex) Upsert(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, v := range vectors {
		embedding := pgvector.NewVector(v.Values)
		_, err := tx.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (id, file_id, chunk_index, page, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET content = $5, embedding = $6`, s.table),
			v.ID, v.Metadata.FileID, v.Metadata.ChunkIndex, v.Metadata.Page, v.Metadata.Text, embedding,
		)
		if err != nil {
			return fmt.Errorf("upsert vector %s: %w", v.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgVectorIndex) Query(ctx context.Context, embedding []float32, topK int, fileID string) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}

	vec := pgvector.NewVector(embedding)

	query := fmt.Sprintf(
		`SELECT id, file_id, chunk_index, page, content,
		        1 - (embedding <=> $1) AS score
		 FROM %s
		 ORDER BY embedding <=> $1
		 LIMIT $2`, s.table)
	args := []any{vec, topK}
	if fileID != "" {
		query = fmt.Sprintf(
			`SELECT id, file_id, chunk_index, page, content,
			        1 - (embedding <=> $1) AS score
			 FROM %s
			 WHERE file_id = $3
			 ORDER BY embedding <=> $1
			 LIMIT $2`, s.table)
		args = append(args, fileID)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Metadata.FileID, &m.Metadata.ChunkIndex, &m.Metadata.Page, &m.Metadata.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Text = m.Metadata.Text
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *PgVectorIndex) DeleteByFile(ctx context.Context, fileID string) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE file_id = $1", s.table), fileID)
	if err != nil {
		return fmt.Errorf("delete vectors for %s: %w", fileID, err)
	}
	return nil
}
