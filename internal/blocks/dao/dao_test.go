package dao

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:", &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// одна база в памяти на соединение
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s := NewStore(db)
	require.NoError(t, s.Migrate())
	return s
}

func paragraph(s string) *edtypes.Node {
	return edtypes.NewParagraph(edtypes.NewText(s))
}

func TestStore_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	entry, err := s.CreateEntry(ctx, "заметка", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Version)

	got, err := s.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "заметка", got.Title)
	assert.True(t, got.Content.IsEmptyState())

	_, err = s.GetEntry(ctx, GenUUID())
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestStore_SaveContent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	entry, err := s.CreateEntry(ctx, "заметка", edtypes.NewDocument(paragraph("a")))
	require.NoError(t, err)

	saved, err := s.SaveContent(ctx, entry.ID, []*edtypes.Node{paragraph("b"), edtypes.NewHeading(2, edtypes.NewText("c"))})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
	require.Len(t, saved.Content.Children, 2)
	assert.Equal(t, "b", saved.Content.Children[0].String())
	assert.Equal(t, 2, saved.Content.Children[1].Level())

	// пустое состояние хранится как NULL и читается как документ по умолчанию
	saved, err = s.SaveContent(ctx, entry.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Version)
	assert.True(t, saved.Content.IsEmptyState())

	revisions, err := s.ListRevisions(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{revisions[0].Version, revisions[1].Version, revisions[2].Version})
	assert.Equal(t, "a", revisions[2].Content.Children[0].String())

	_, err = s.SaveContent(ctx, GenUUID(), nil)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestStore_PruneRevisions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.CreateEntry(ctx, "first", nil)
	require.NoError(t, err)
	second, err := s.CreateEntry(ctx, "second", nil)
	require.NoError(t, err)

	for _, text := range []string{"a", "b", "c", "d"} {
		_, err := s.SaveContent(ctx, first.ID, []*edtypes.Node{paragraph(text)})
		require.NoError(t, err)
	}

	deleted, err := s.PruneRevisions(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	revisions, err := s.ListRevisions(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, 5, revisions[0].Version)
	assert.Equal(t, 4, revisions[1].Version)

	revisions, err = s.ListRevisions(ctx, second.ID)
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestStore_Sink(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	entry, err := s.CreateEntry(ctx, "заметка", nil)
	require.NoError(t, err)

	var saveErrs []error
	sink := s.Sink(ctx, entry.ID, func(_ time.Time, err error) { saveErrs = append(saveErrs, err) })
	sink([]*edtypes.Node{paragraph("x")})
	assert.Equal(t, []error{nil}, saveErrs)

	got, err := s.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "x", got.Content.Children[0].String())

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_SinkMissingEntry(t *testing.T) {
	s := setupTestStore(t)

	var saveErr error
	s.Sink(context.Background(), GenUUID(), func(_ time.Time, err error) { saveErr = err })(nil)
	assert.ErrorIs(t, saveErr, ErrEntryNotFound)
}
