package assistant

import (
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	errors "github.com/Laisky/errors/v2"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newMockIndex(t *testing.T) (*PgVectorIndex, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS assistant_index_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_assistant_index_entries_namespace").
		WillReturnResult(sqlmock.NewResult(0, 0))

	idx, err := NewPgVectorIndex(t.Context(), db, "workspace", 3, nil)
	require.NoError(t, err)
	return idx, mock
}

func TestPgVectorIndexUpsert(t *testing.T) {
	t.Parallel()

	idx, mock := newMockIndex(t)

	mock.ExpectExec("(?s)INSERT INTO assistant_index_entries.+ON CONFLICT .id. DO UPDATE SET").
		WillReturnResult(sqlmock.NewResult(0, 2))

	entries := []IndexEntry{
		{ID: "m1", Vector: pgvector.NewVector([]float32{1, 0, 0}),
			Metadata: EntryMetadata{Content: "a", SourceID: "m1", SourceType: SourceTypeMessage}},
		{ID: "doc1-chunk-0", Vector: pgvector.NewVector([]float32{0, 1, 0}),
			Metadata: EntryMetadata{Content: "b", SourceID: "doc1", SourceType: SourceTypeDocument}},
	}
	require.NoError(t, idx.Upsert(t.Context(), entries))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexUpsertEmpty(t *testing.T) {
	t.Parallel()

	idx, mock := newMockIndex(t)

	require.NoError(t, idx.Upsert(t.Context(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexUpsertFailure(t *testing.T) {
	t.Parallel()

	idx, mock := newMockIndex(t)

	mock.ExpectExec("INSERT INTO assistant_index_entries").
		WillReturnError(errors.New("server closed the connection"))

	err := idx.Upsert(t.Context(), []IndexEntry{
		{ID: "m1", Vector: pgvector.NewVector([]float32{1, 0, 0})},
	})

	var unavailable *IndexUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, "upsert", unavailable.Op)
}

func TestPgVectorIndexQuery(t *testing.T) {
	t.Parallel()

	idx, mock := newMockIndex(t)

	md1, err := json.Marshal(EntryMetadata{Content: "The launch is on Friday", SourceID: "m1", SourceType: SourceTypeMessage})
	require.NoError(t, err)
	md2, err := json.Marshal(EntryMetadata{Content: "roadmap", SourceID: "doc1", SourceType: SourceTypeDocument})
	require.NoError(t, err)

	mock.ExpectQuery("(?s)SELECT id, metadata, 1 - .+ORDER BY embedding").
		WillReturnRows(sqlmock.NewRows([]string{"id", "metadata", "score"}).
			AddRow("m1", md1, 0.92).
			AddRow("doc1-chunk-0", md2, 0.81))

	matches, err := idx.Query(t.Context(), pgvector.NewVector([]float32{1, 0, 0}), 5, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "m1", matches[0].ID)
	require.InDelta(t, 0.92, matches[0].Score, 1e-9)
	require.Equal(t, "The launch is on Friday", matches[0].Metadata.Content)
	require.Equal(t, SourceTypeDocument, matches[1].Metadata.SourceType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexQuerySourceTypeFilter(t *testing.T) {
	t.Parallel()

	idx, mock := newMockIndex(t)

	mock.ExpectQuery("AND metadata->>'sourceType' =").
		WillReturnRows(sqlmock.NewRows([]string{"id", "metadata", "score"}))

	matches, err := idx.Query(t.Context(), pgvector.NewVector([]float32{1, 0, 0}), 5,
		&QueryFilter{SourceType: SourceTypeMessage})
	require.NoError(t, err)
	require.Empty(t, matches)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexQueryFailure(t *testing.T) {
	t.Parallel()

	idx, mock := newMockIndex(t)

	mock.ExpectQuery("SELECT id, metadata").
		WillReturnError(errors.New("terminating connection"))

	_, err := idx.Query(t.Context(), pgvector.NewVector([]float32{1, 0, 0}), 5, nil)

	var unavailable *IndexUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, "query", unavailable.Op)
}

func TestPgVectorIndexQueryInvalidTopK(t *testing.T) {
	t.Parallel()

	idx, _ := newMockIndex(t)

	_, err := idx.Query(t.Context(), pgvector.NewVector([]float32{1, 0, 0}), 0, nil)
	require.Error(t, err)
}
