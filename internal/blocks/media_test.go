package blocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

func TestPrefixFileURL(t *testing.T) {
	tests := []struct {
		backend, url, want string
	}{
		{"https://cms.local", "/uploads/a.png", "https://cms.local/uploads/a.png"},
		{"https://cms.local/", "/uploads/a.png", "https://cms.local/uploads/a.png"},
		{"https://cms.local", "https://cdn.local/a.png", "https://cdn.local/a.png"},
		{"", "/uploads/a.png", "/uploads/a.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrefixFileURL(tt.backend, tt.url), tt.url)
	}
}

func TestEditor_InsertAssets(t *testing.T) {
	var kinds []string
	library := MediaLibraryFunc(func(_ context.Context, k []string) ([]*edtypes.Media, error) {
		kinds = k
		return []*edtypes.Media{
			{Name: "cat.png", URL: "/uploads/cat.png", Width: 640, Height: 480},
			{Name: "dog.png", AlternativeText: "собака", URL: "https://cdn.local/dog.png"},
		}, nil
	})
	e := newTestEditor(t, []*edtypes.Node{para("текст"), edtypes.EmptyParagraph()},
		WithMediaLibrary(library), WithBackendURL("https://cms.local"))
	e.Session().Select(point(0, 1, 0))

	require.NoError(t, e.Convert(context.Background(), "image"))
	assert.Equal(t, []string{"images"}, kinds)
	assert.Equal(t, `paragraph("текст"), image(""), image("")`, dump(e.Session().Children()))

	cat := e.Session().Children()[1].Image()
	require.NotNil(t, cat)
	assert.Equal(t, "https://cms.local/uploads/cat.png", cat.URL)
	assert.Equal(t, "cat.png", cat.AlternativeText)
	dog := e.Session().Children()[2].Image()
	assert.Equal(t, "собака", dog.AlternativeText)
	assert.Equal(t, point(0, 1, 0), e.Session().Selection().Anchor)

	block, ok := e.SelectedBlock()
	require.True(t, ok)
	assert.Equal(t, "image", block.Key)
}

func TestEditor_InsertAssetsSplitsList(t *testing.T) {
	e := newTestEditor(t, []*edtypes.Node{edtypes.NewList(edtypes.ListUnordered, 0, item("a"), item(""), item("c"))})
	e.Session().Select(point(0, 0, 1, 0))

	e.InsertAssets(edtypes.TypeFile, []*edtypes.Media{{Name: "doc.pdf", URL: "/doc.pdf"}})
	assert.Equal(t,
		`list[unordered,0](list-item("a")), file(""), list[unordered,0](list-item("c"))`,
		dump(e.Session().Children()))
}

func TestEditor_MediaLibraryError(t *testing.T) {
	errClosed := errors.New("closed")
	e := newTestEditor(t, []*edtypes.Node{para("x")}, WithMediaLibrary(MediaLibraryFunc(
		func(context.Context, []string) ([]*edtypes.Media, error) { return nil, errClosed },
	)))
	e.Session().Select(point(0, 0, 0))

	assert.ErrorIs(t, e.Convert(context.Background(), "file"), errClosed)
	assert.Equal(t, `paragraph("x")`, dump(e.Session().Children()))
}

func TestImage_Keys(t *testing.T) {
	image := func() *edtypes.Node { return edtypes.NewImage(&edtypes.Media{Name: "a.png", URL: "/a.png"}) }

	t.Run("enter adds paragraph after", func(t *testing.T) {
		e := newTestEditor(t, []*edtypes.Node{image()})
		e.Session().Select(point(0, 0, 0))

		press(e, KeyEnter)
		assert.Equal(t, `image(""), paragraph("")`, dump(e.Session().Children()))
		assert.Equal(t, point(0, 1, 0), e.Session().Selection().Anchor)
	})

	t.Run("shift enter does not type a newline", func(t *testing.T) {
		e := newTestEditor(t, []*edtypes.Node{image()})
		e.Session().Select(point(0, 0, 0))

		e.HandleKeyDown(&KeyEvent{Key: KeyEnter, Shift: true})
		assert.Equal(t, `image(""), paragraph("")`, dump(e.Session().Children()))
	})

	t.Run("backspace removes image", func(t *testing.T) {
		e := newTestEditor(t, []*edtypes.Node{para("текст"), image()})
		e.Session().Select(point(0, 1, 0))

		ev := press(e, KeyBackspace)
		assert.True(t, ev.DefaultPrevented())
		assert.Equal(t, `paragraph("текст")`, dump(e.Session().Children()))
	})

	t.Run("backspace on the only block", func(t *testing.T) {
		e := newTestEditor(t, []*edtypes.Node{image()})
		e.Session().Select(point(0, 0, 0))

		press(e, KeyBackspace)
		assert.Equal(t, `paragraph("")`, dump(e.Session().Children()))
		assert.Nil(t, e.Session().Children()[0].Image())
		assert.Nil(t, e.Value())
	})
}
