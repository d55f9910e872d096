package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

func TestValidURL(t *testing.T) {
	v := NewDocumentValidator()
	require.NotNil(t, v)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://aisa.ru", true},
		{"http://localhost:8080/path?q=1", true},
		{"/uploads/a.png", true},
		{"mailto:user@aisa.ru", true},
		{"tel:+79990000000", true},
		{"", false},
		{"not a url", false},
		{"mailto:", false},
		{"//evil.com/a", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidURL(tt.url))
		})
	}
}

func TestValidateNode(t *testing.T) {
	v := NewDocumentValidator()

	badList := edtypes.NewList(edtypes.ListOrdered, 0)
	badList.SetAttr(edtypes.AttrFormat, "numbered")
	badIndent := edtypes.NewList(edtypes.ListOrdered, -1)

	tests := []struct {
		name    string
		node    *edtypes.Node
		wantErr bool
	}{
		{"paragraph", edtypes.EmptyParagraph(), false},
		{"heading", edtypes.NewHeading(3), false},
		{"heading level", edtypes.NewHeading(7), true},
		{"list", edtypes.NewList(edtypes.ListUnordered, 2), false},
		{"list format", badList, true},
		{"list indent", badIndent, true},
		{"code", edtypes.NewCode("c++"), false},
		{"code language", edtypes.NewCode("bad language"), true},
		{"empty link", edtypes.NewLink(""), false},
		{"link", edtypes.NewLink("https://aisa.ru"), false},
		{"bad link", edtypes.NewLink("javascript alert"), true},
		{"image", edtypes.NewImage(&edtypes.Media{URL: "/a.png"}), false},
		{"image without url", edtypes.NewImage(&edtypes.Media{Name: "a.png"}), true},
		{"unknown", &edtypes.Node{Type: "table"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateNode(tt.node)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, v.ValidateNode(&edtypes.Node{Type: edtypes.TypeFile}), ErrMissingMedia)
}

func TestValidateDocument(t *testing.T) {
	v := NewDocumentValidator()
	doc := edtypes.NewDocument(
		edtypes.NewHeading(9, edtypes.NewText("a")),
		edtypes.NewParagraph(edtypes.NewText("b"), edtypes.NewLink("bad url", edtypes.NewText("c"))),
	)

	err := v.ValidateDocument(doc)
	require.Error(t, err)

	var paths []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var nodeErr *NodeError
		require.True(t, errors.As(e, &nodeErr))
		paths = append(paths, nodeErr.Path.String())
	}
	assert.Len(t, paths, 2)
	assert.Equal(t, edtypes.Path{0}.String(), paths[0])
	assert.Equal(t, edtypes.Path{1, 1}.String(), paths[1])

	assert.NoError(t, v.ValidateDocument(edtypes.DefaultDocument()))
	assert.NoError(t, v.ValidateDocument(nil))
}
