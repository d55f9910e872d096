// Пакет validation проверяет атрибуты узлов документа перед импортом и сохранением.
//
// Основные возможности:
//   - проверка уровня заголовка, формата и вложенности списков, языка блока кода;
//   - проверка адресов ссылок и вложений, относительные адреса от корня разрешены;
//   - обход всего дерева с указанием пути ошибочного узла.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// relativeURLBase хост, с которым проверяются относительные адреса.
const relativeURLBase = "https://blocks.local"

var languageRegexp = regexp.MustCompile(`^[a-zA-Z0-9_+#.-]{1,32}$`)

type DocumentValidator struct {
	validator *validator.Validate
}

type headingAttrs struct {
	Level int `validate:"min=1,max=6"`
}

type listAttrs struct {
	Format      string `validate:"listFormat"`
	IndentLevel int    `validate:"min=0"`
}

type codeAttrs struct {
	Language string `validate:"codeLanguage"`
}

type linkAttrs struct {
	URL string `validate:"omitempty,linkURL"`
}

type mediaAttrs struct {
	URL string `validate:"required,linkURL"`
}

// NodeError ошибка проверки узла по пути Path.
type NodeError struct {
	Path edtypes.Path
	Type edtypes.NodeType
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s at %s: %v", e.Type, e.Path, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

var ErrMissingMedia = errors.New("media attribute is missing")

func NewDocumentValidator() *DocumentValidator {
	v := validator.New()
	if err := v.RegisterValidation("listFormat", listFormatValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("codeLanguage", codeLanguageValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("linkURL", linkURLValidator); err != nil {
		return nil
	}
	return &DocumentValidator{v}
}

// ValidURL проверяет адрес ссылки из попапа редактирования.
func (dv *DocumentValidator) ValidURL(u string) bool {
	return dv.validator.Var(u, "required,linkURL") == nil
}

// ValidateDocument проверяет все узлы документа и возвращает все найденные ошибки.
func (dv *DocumentValidator) ValidateDocument(doc *edtypes.Document) error {
	if doc == nil {
		return nil
	}
	var errs []error
	for i, n := range doc.Children {
		errs = append(errs, dv.validateTree(n, edtypes.Path{i})...)
	}
	return errors.Join(errs...)
}

// ValidateNode проверяет атрибуты одного узла без детей.
func (dv *DocumentValidator) ValidateNode(n *edtypes.Node) error {
	var err error
	switch n.Type {
	case edtypes.TypeHeading:
		err = dv.validate(headingAttrs{Level: n.Level()})
	case edtypes.TypeList:
		err = dv.validate(listAttrs{Format: string(n.Format()), IndentLevel: n.IndentLevel()})
	case edtypes.TypeCode:
		err = dv.validate(codeAttrs{Language: n.Language()})
	case edtypes.TypeLink:
		err = dv.validate(linkAttrs{URL: n.URL()})
	case edtypes.TypeImage, edtypes.TypeFile:
		m := n.Image()
		if n.Type == edtypes.TypeFile {
			m = n.File()
		}
		if m == nil {
			return ErrMissingMedia
		}
		err = dv.validate(mediaAttrs{URL: m.URL})
	case edtypes.TypeText, edtypes.TypeParagraph, edtypes.TypeQuote, edtypes.TypeListItem:
	default:
		err = fmt.Errorf("unknown node type %q", n.Type)
	}
	return err
}

func (dv *DocumentValidator) validateTree(n *edtypes.Node, path edtypes.Path) []error {
	var errs []error
	if err := dv.ValidateNode(n); err != nil {
		errs = append(errs, &NodeError{Path: path, Type: n.Type, Err: err})
	}
	for i, c := range n.Children {
		errs = append(errs, dv.validateTree(c, path.Child(i))...)
	}
	return errs
}

func (dv *DocumentValidator) validate(i interface{}) error {
	if err := dv.validator.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		return verrs
	}
	return nil
}

func absoluteURL(u string) string {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return relativeURLBase + u
	}
	return u
}

func listFormatValidator(fl validator.FieldLevel) bool {
	switch edtypes.ListFormat(fl.Field().String()) {
	case edtypes.ListOrdered, edtypes.ListUnordered:
		return true
	}
	return false
}

func codeLanguageValidator(fl validator.FieldLevel) bool {
	return languageRegexp.MatchString(fl.Field().String())
}

func linkURLValidator(fl validator.FieldLevel) bool {
	value := absoluteURL(fl.Field().String())
	for _, scheme := range []string{"mailto:", "tel:"} {
		if strings.HasPrefix(value, scheme) {
			return len(value) > len(scheme)
		}
	}
	return urlValidator.Var(value, "url") == nil
}

// urlValidator отдельный экземпляр для вложенной проверки внутри пользовательского правила.
var urlValidator = validator.New()
