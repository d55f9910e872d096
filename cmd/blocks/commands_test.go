package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aisa-it/blocks/internal/blocks/config"
	"github.com/aisa-it/blocks/internal/blocks/dao"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/script"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	db, err := dao.Open(":memory:", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store := dao.NewStore(db)
	require.NoError(t, store.Migrate())

	return &app{
		cfg: &config.Config{
			DebounceMS:          60000,
			DefaultCodeLanguage: edtypes.DefaultCodeLanguage,
			RevisionsKeep:       2,
			PruneSchedule:       "@hourly",
			Development:         true,
			MetricsFile:         filepath.Join(t.TempDir(), "blocks.prom"),
		},
		db:    db,
		store: store,
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportFiles(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	files := []string{
		writeFile(t, "note.json", `[{"type":"heading","level":1,"children":[{"type":"text","text":"Заметка"}]}]`),
		writeFile(t, "page.html", `<h2>Страница</h2><ul><li>один</li></ul>`),
		writeFile(t, "broken.json", `{"type":"paragraph"}`),
		writeFile(t, "notes.txt", `текст`),
	}

	ids, err := importFiles(ctx, a.store, files, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, uuid.Nil, ids[2])
	assert.Equal(t, uuid.Nil, ids[3])

	note, err := a.store.GetEntry(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "note", note.Title)
	assert.Equal(t, 1, note.Content.Children[0].Level())

	page, err := a.store.GetEntry(ctx, ids[1])
	require.NoError(t, err)
	require.Len(t, page.Content.Children, 2)
	assert.Equal(t, edtypes.TypeList, page.Content.Children[1].Type)
}

func TestReplay(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	entry, err := a.store.CreateEntry(ctx, "черновик", nil)
	require.NoError(t, err)

	actions := []script.Action{
		{Action: script.ActionSelect, Anchor: &edtypes.Point{Path: edtypes.Path{0, 0}}},
		{Action: script.ActionType, Text: "# Заголовок\nтекст"},
	}
	saved, err := replay(ctx, a, entry.ID, actions)
	require.NoError(t, err)

	// изменения доставлены одним сохранением при завершении
	assert.Equal(t, 2, saved.Version)
	require.Len(t, saved.Content.Children, 2)
	assert.Equal(t, edtypes.TypeHeading, saved.Content.Children[0].Type)
	assert.Equal(t, "текст", saved.Content.Children[1].String())

	data, err := os.ReadFile(a.cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `blocks_saves_total{result="ok"} 1`)

	_, err = replay(ctx, a, uuid.Must(uuid.NewV4()), actions)
	assert.ErrorIs(t, err, dao.ErrEntryNotFound)
}

func TestExportEntry(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	doc := edtypes.NewDocument(
		edtypes.NewHeading(1, edtypes.NewText("Тема")),
		edtypes.NewParagraph(edtypes.NewText("a & b")),
	)
	entry, err := a.store.CreateEntry(ctx, "тема", doc)
	require.NoError(t, err)

	tests := []struct {
		format string
		want   string
	}{
		{"md", "# Тема\n\na & b"},
		{"txt", "Тема\na & b"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, exportEntry(ctx, a, entry, tt.format, false, &buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exportEntry(ctx, a, entry, "html", false, &buf))
		assert.Contains(t, buf.String(), "<h1>Тема</h1>")
		assert.Contains(t, buf.String(), "a &amp; b")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exportEntry(ctx, a, entry, "json", false, &buf))
		parsed, err := edtypes.ParseDocument(&buf)
		require.NoError(t, err)
		assert.Len(t, parsed.Children, 2)
	})

	t.Run("pdf", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exportEntry(ctx, a, entry, "pdf", false, &buf))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	})

	var buf bytes.Buffer
	assert.ErrorIs(t, exportEntry(ctx, a, entry, "docx", false, &buf), ErrUnknownFormat)
}

func TestPruneJobs(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	entry, err := a.store.CreateEntry(ctx, "заметка", nil)
	require.NoError(t, err)
	for range 3 {
		_, err := a.store.SaveContent(ctx, entry.ID, nil)
		require.NoError(t, err)
	}

	jobs := pruneJobs(ctx, a)
	require.Contains(t, jobs, pruneJobName)
	assert.Equal(t, "@hourly", jobs[pruneJobName].Schedule)
	jobs[pruneJobName].Func()

	revisions, err := a.store.ListRevisions(ctx, entry.ID)
	require.NoError(t, err)
	assert.Len(t, revisions, 2)
}
