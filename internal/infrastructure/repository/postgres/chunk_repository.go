package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083003)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	document_name TEXT NOT NULL,
	document_path TEXT NOT NULL,
	page INTEGER NOT NULL DEFAULT 0,
	sequence_index INTEGER NOT NULL,
	text_content TEXT NOT NULL,
	raw_text TEXT NOT NULL,
	entities JSONB NOT NULL DEFAULT '{}'::jsonb,
	embedding JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_session ON chunks(session_id, document_id, sequence_index);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveChunks writes one document's chunks and vectors in a single
// transaction so readers never observe a half-indexed document.
func (r *ChunkRepository) SaveChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunks tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO chunks (
	id, session_id, document_id, document_name, document_path, page, sequence_index, text_content, raw_text, entities, embedding
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
	text_content = EXCLUDED.text_content,
	raw_text = EXCLUDED.raw_text,
	entities = EXCLUDED.entities,
	embedding = EXCLUDED.embedding
`
	for i, chunk := range chunks {
		entitiesJSON, err := json.Marshal(chunk.Entities)
		if err != nil {
			return fmt.Errorf("marshal entities: %w", err)
		}
		embeddingJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		_, err = tx.ExecContext(ctx, query,
			chunk.ID, chunk.SessionID, chunk.DocumentID, chunk.DocumentName, chunk.DocumentPath,
			chunk.Page, chunk.SequenceIndex, chunk.Text, chunk.RawText, entitiesJSON, embeddingJSON,
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Chunk, [][]float32, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, document_id, document_name, document_path, page, sequence_index, text_content, raw_text, entities, embedding
FROM chunks
WHERE session_id = $1
ORDER BY document_id, sequence_index
`, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("query session chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	var vectors [][]float32
	for rows.Next() {
		var chunk domain.Chunk
		var entitiesRaw, embeddingRaw []byte
		err := rows.Scan(
			&chunk.ID, &chunk.SessionID, &chunk.DocumentID, &chunk.DocumentName, &chunk.DocumentPath,
			&chunk.Page, &chunk.SequenceIndex, &chunk.Text, &chunk.RawText, &entitiesRaw, &embeddingRaw,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scan chunk row: %w", err)
		}
		if err := json.Unmarshal(entitiesRaw, &chunk.Entities); err != nil {
			return nil, nil, fmt.Errorf("unmarshal entities: %w", err)
		}
		chunk.EntityCounts = chunk.Entities.Counts()

		var vector []float32
		if err := json.Unmarshal(embeddingRaw, &vector); err != nil {
			return nil, nil, fmt.Errorf("unmarshal embedding: %w", err)
		}
		chunks = append(chunks, chunk)
		vectors = append(vectors, vector)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate session chunks: %w", err)
	}
	return chunks, vectors, nil
}

func (r *ChunkRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count session chunks: %w", err)
	}
	return count, nil
}

func (r *ChunkRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session chunks: %w", err)
	}
	return nil
}
