package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

const tableIndexEntries = "assistant_index_entries"

// PgVectorIndex stores embeddings in a pgvector-backed table, one row per
// message or document chunk, with denormalized provenance metadata as JSONB.
type PgVectorIndex struct {
	db        *gorm.DB
	namespace string
	logger    logSDK.Logger
}

// NewPgVectorIndex ensures the vector extension and schema, then returns
// an index scoped to the given namespace.
func NewPgVectorIndex(ctx context.Context, db *gorm.DB, namespace string, dimensions int, logger logSDK.Logger) (*PgVectorIndex, error) {
	if db == nil {
		return nil, errors.New("gorm db is required")
	}
	if strings.TrimSpace(namespace) == "" {
		return nil, errors.New("namespace is required")
	}
	if dimensions <= 0 {
		return nil, errors.New("embedding dimensions must be positive")
	}
	if logger == nil {
		logger = log.Logger.Named("pgvector_index")
	}

	idx := &PgVectorIndex{
		db:        db,
		namespace: namespace,
		logger:    logger,
	}
	if err := idx.migrate(ctx, dimensions); err != nil {
		return nil, &IndexUnavailableError{Op: "migrate", Err: err}
	}

	return idx, nil
}

func (idx *PgVectorIndex) migrate(ctx context.Context, dimensions int) error {
	idx.logger.Debug("ensuring pgvector extension")
	if err := ensureVectorExtension(ctx, idx.db, idx.logger); err != nil {
		return errors.Wrap(err, "ensure pgvector extension")
	}

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		namespace TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		metadata JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, tableIndexEntries, dimensions)
	if err := idx.db.WithContext(ctx).Exec(createTable).Error; err != nil {
		return errors.Wrap(err, "create index entries table")
	}

	createIdx := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_namespace ON %s (namespace)",
		tableIndexEntries, tableIndexEntries)
	if err := idx.db.WithContext(ctx).Exec(createIdx).Error; err != nil {
		return errors.Wrap(err, "create namespace index")
	}

	return nil
}

func ensureVectorExtension(ctx context.Context, db *gorm.DB, logger logSDK.Logger) error {
	if db == nil {
		return errors.New("gorm db is nil")
	}
	if !isPostgresDialect(db) {
		return nil
	}

	if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		if shouldFallbackToPgvector(err) {
			if logger != nil {
				logger.Debug("pgvector extension unavailable under name 'vector', retrying with legacy name")
			}
			if execErr := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS pgvector").Error; execErr != nil {
				return errors.Wrap(execErr, "create pgvector extension")
			}
			return nil
		}
		return errors.Wrap(err, "create vector extension")
	}
	return nil
}

func isPostgresDialect(db *gorm.DB) bool {
	if db == nil || db.Dialector == nil {
		return false
	}
	return strings.EqualFold(db.Dialector.Name(), "postgres")
}

func shouldFallbackToPgvector(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "58P01", "42704":
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "extension \"vector\"") && strings.Contains(msg, "not") && strings.Contains(msg, "available")
}

// Upsert writes one batch of entries in a single statement, overwriting by
// ID. The caller bounds batch size; a failure here means no entry of this
// batch was written, so the caller can retry just this slice.
func (idx *PgVectorIndex) Upsert(ctx context.Context, entries []IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*4)
	for _, entry := range entries {
		metadata, err := json.Marshal(entry.Metadata)
		if err != nil {
			return errors.Wrapf(err, "marshal metadata for entry %q", entry.ID)
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, now(), now())")
		args = append(args, entry.ID, idx.namespace, entry.Vector, datatypes.JSON(metadata))
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (id, namespace, embedding, metadata, created_at, updated_at)
		VALUES %s
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			updated_at = now()`,
		tableIndexEntries, strings.Join(placeholders, ", "))

	if err := idx.db.WithContext(ctx).Exec(stmt, args...).Error; err != nil {
		return &IndexUnavailableError{Op: "upsert", Err: err}
	}

	idx.logger.Debug("upserted index entries",
		zap.String("namespace", idx.namespace),
		zap.Int("count", len(entries)))
	return nil
}

type indexQueryRow struct {
	ID       string         `gorm:"column:id"`
	Score    float64        `gorm:"column:score"`
	Metadata datatypes.JSON `gorm:"column:metadata"`
}

// Query returns the topK nearest entries by cosine similarity,
// score = 1 - distance, in non-increasing order.
func (idx *PgVectorIndex) Query(ctx context.Context, vector pgvector.Vector, topK int, filter *QueryFilter) ([]Match, error) {
	if topK <= 0 {
		return nil, errors.New("topK must be positive")
	}

	stmt := fmt.Sprintf(`SELECT id, metadata, 1 - (embedding <=> ?) AS score
		FROM %s
		WHERE namespace = ?`, tableIndexEntries)
	args := []any{vector, idx.namespace}
	if filter != nil && filter.SourceType != "" {
		stmt += " AND metadata->>'sourceType' = ?"
		args = append(args, string(filter.SourceType))
	}
	stmt += " ORDER BY embedding <=> ? ASC LIMIT ?"
	args = append(args, vector, topK)

	rows := make([]indexQueryRow, 0, topK)
	if err := idx.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, &IndexUnavailableError{Op: "query", Err: err}
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		var metadata EntryMetadata
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, errors.Wrapf(err, "decode metadata for entry %q", row.ID)
		}
		matches = append(matches, Match{ID: row.ID, Score: row.Score, Metadata: metadata})
	}

	idx.logger.Debug("vector query finished",
		zap.String("namespace", idx.namespace),
		zap.Int("matches", len(matches)))
	return matches, nil
}
