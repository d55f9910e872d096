package edtypes_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name           string
		json           string
		wantBlockCount int
		wantEmptyState bool
		wantErr        bool
	}{
		{
			name:           "null is the empty state",
			json:           `null`,
			wantBlockCount: 1,
			wantEmptyState: true,
		},
		{
			name:           "empty array is the empty state",
			json:           `[]`,
			wantBlockCount: 1,
			wantEmptyState: true,
		},
		{
			name: "paragraph and heading",
			json: `[
				{"type":"paragraph","children":[{"type":"text","text":"Hello","bold":true}]},
				{"type":"heading","level":2,"children":[{"type":"text","text":"Title"}]}
			]`,
			wantBlockCount: 2,
		},
		{
			name: "unknown blocks are skipped",
			json: `[
				{"type":"table","children":[]},
				{"type":"quote","children":[{"type":"text","text":"q"}]}
			]`,
			wantBlockCount: 1,
		},
		{
			name:    "object instead of array",
			json:    `{"type":"paragraph"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc edtypes.Document
			err := json.Unmarshal([]byte(tt.json), &doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, doc.Children, tt.wantBlockCount)
			assert.Equal(t, tt.wantEmptyState, doc.IsEmptyState())
		})
	}
}

func TestDocument_Attributes(t *testing.T) {
	doc, err := edtypes.ParseDocument(strings.NewReader(`[
		{"type":"heading","level":3,"children":[{"type":"text","text":"H"}]},
		{"type":"list","format":"ordered","indentLevel":1,"children":[
			{"type":"list-item","children":[
				{"type":"text","text":"see "},
				{"type":"link","url":"https://example.com","children":[{"type":"text","text":"here","italic":true}]},
				{"type":"text","text":""}
			]}
		]},
		{"type":"code","children":[{"type":"text","text":"x := 1"}]},
		{"type":"image","image":{"url":"/uploads/a.png","name":"a.png","width":640,"height":480},"children":[{"type":"text","text":""}]}
	]`))
	require.NoError(t, err)
	require.Len(t, doc.Children, 4)

	assert.Equal(t, 3, doc.Children[0].Level())

	list := doc.Children[1]
	assert.Equal(t, edtypes.ListOrdered, list.Format())
	assert.Equal(t, 1, list.IndentLevel())

	link, ok := doc.Get(edtypes.Path{1, 0, 1})
	require.True(t, ok)
	assert.Equal(t, "https://example.com", link.URL())
	assert.True(t, link.Children[0].HasMark(edtypes.MarkItalic))
	assert.False(t, link.Children[0].HasMark(edtypes.MarkBold))

	assert.Equal(t, edtypes.DefaultCodeLanguage, doc.Children[2].Language())

	img := doc.Children[3].Image()
	require.NotNil(t, img)
	assert.Equal(t, "/uploads/a.png", img.URL)
	assert.Equal(t, 640, img.Width)
}

func TestDocument_MarshalJSON(t *testing.T) {
	t.Run("empty state is null", func(t *testing.T) {
		b, err := json.Marshal(edtypes.DefaultDocument())
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	})

	t.Run("stable key order", func(t *testing.T) {
		doc := edtypes.NewDocument(
			edtypes.NewHeading(1, edtypes.NewText("Hi", edtypes.MarkBold)),
			edtypes.NewList(edtypes.ListUnordered, 0, edtypes.NewListItem(edtypes.NewText("a"))),
		)
		b, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.Equal(t,
			`[{"type":"heading","level":1,"children":[{"type":"text","bold":true,"text":"Hi"}]},`+
				`{"type":"list","format":"unordered","indentLevel":0,"children":[{"type":"list-item","children":[{"type":"text","text":"a"}]}]}]`,
			string(b))
	})

	t.Run("document with text survives a round trip", func(t *testing.T) {
		doc := edtypes.NewDocument(edtypes.NewParagraph(edtypes.NewText("keep")))
		b, err := json.Marshal(doc)
		require.NoError(t, err)

		var back edtypes.Document
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, doc, &back)
	})
}

func TestDocument_SQL(t *testing.T) {
	v, err := edtypes.DefaultDocument().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var doc edtypes.Document
	require.NoError(t, doc.Scan(nil))
	assert.True(t, doc.IsEmptyState())

	require.NoError(t, doc.Scan(`[{"type":"quote","children":[{"type":"text","text":"q"}]}]`))
	assert.Equal(t, edtypes.TypeQuote, doc.Children[0].Type)

	assert.Error(t, doc.Scan(42))
	assert.Equal(t, "jsonb", doc.GormDataType())
}

func TestDocument_IsEmptyState(t *testing.T) {
	tests := []struct {
		name string
		doc  *edtypes.Document
		want bool
	}{
		{"default", edtypes.DefaultDocument(), true},
		{"text", edtypes.NewDocument(edtypes.NewParagraph(edtypes.NewText("a"))), false},
		{"two paragraphs", edtypes.NewDocument(edtypes.EmptyParagraph(), edtypes.EmptyParagraph()), false},
		{"empty heading", edtypes.NewDocument(edtypes.NewHeading(1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.IsEmptyState())
		})
	}
}
