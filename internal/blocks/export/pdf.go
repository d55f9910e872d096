package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/aisa-it/blocks/internal/blocks"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

const (
	pdfFontFamily = "BlocksSans"
	pdfCoreFont   = "Helvetica"
	pdfCoreMono   = "Courier"

	pdfTextSize = 11.0
)

var pdfHeadingSizes = [...]float64{22, 18, 16, 14, 12.5, 11.5}

// ImageLoader загружает изображение по адресу. Возвращает содержимое и MIME тип.
type ImageLoader func(ctx context.Context, url string) (io.ReadCloser, string, error)

// HTTPImageLoader загружает изображения обычным GET запросом.
func HTTPImageLoader(client *http.Client) ImageLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, url string) (io.ReadCloser, string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("load image %s: status %d", url, resp.StatusCode)
		}
		return resp.Body, resp.Header.Get("Content-Type"), nil
	}
}

// PDFOptions параметры экспорта в PDF.
//
// Параметры:
//   - FontPath: путь к TTF шрифту с поддержкой кириллицы. Без него используются встроенные шрифты PDF (только cp1252).
//   - BackendURL: адрес бэкенда для относительных адресов медиатеки.
//   - ImageLoader: загрузка изображений. Без него изображения выводятся ссылками.
type PDFOptions struct {
	FontPath    string
	BackendURL  string
	ImageLoader ImageLoader
}

type pdfWriter struct {
	ctx  context.Context
	pdf  *fpdf.Fpdf
	opts PDFOptions

	family string
	mono   string
	tr     func(string) string

	defaultMargins Margins
}

type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (m *Margins) GetMargins(pdf fpdf.Pdf) {
	m.Left, m.Top, m.Right, m.Bottom = pdf.GetMargins()
}

// PDF записывает блоки верхнего уровня в out в формате A4.
func PDF(ctx context.Context, nodes []*edtypes.Node, out io.Writer, opts PDFOptions) error {
	pdf := fpdf.New("P", "mm", "A4", "") // 210*297 mm

	w := pdfWriter{
		ctx:    ctx,
		pdf:    pdf,
		opts:   opts,
		family: pdfCoreFont,
		mono:   pdfCoreMono,
	}
	w.defaultMargins.GetMargins(w.pdf)

	if opts.FontPath != "" {
		font, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return fmt.Errorf("read pdf font: %w", err)
		}
		for _, style := range []string{"", "B", "I", "BI"} {
			pdf.AddUTF8FontFromBytes(pdfFontFamily, style, font)
		}
		w.family = pdfFontFamily
		w.mono = pdfFontFamily
		w.tr = cleanUnsupportedSymbols
	} else {
		w.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.writeBlock(n)
		w.resetMargins()
	}
	return pdf.Output(out)
}

func (w *pdfWriter) writeBlock(n *edtypes.Node) {
	switch n.Type {
	case edtypes.TypeParagraph:
		w.writeInline(n.Children, pdfTextSize, "")
		w.pdf.Ln(-1)
		w.pdf.Ln(1.5)
	case edtypes.TypeHeading:
		level := min(max(n.Level(), 1), len(pdfHeadingSizes))
		w.pdf.Ln(2)
		w.pdf.Bookmark(w.tr(n.String()), 0, -1)
		w.writeInline(n.Children, pdfHeadingSizes[level-1], "B")
		w.pdf.Ln(-1)
		w.pdf.Ln(2)
	case edtypes.TypeQuote:
		w.pdf.Ln(2)
		y1 := w.pdf.GetY()
		w.pdf.SetLeftMargin(w.defaultMargins.Left + 3)
		w.pdf.SetX(w.defaultMargins.Left + 3)
		w.writeInline(n.Children, pdfTextSize, "I")
		w.pdf.Ln(-1)
		w.pdf.SetLeftMargin(w.defaultMargins.Left)

		w.pdf.SetLineWidth(0.5)
		w.pdf.SetDrawColor(74, 71, 82)
		w.pdf.Line(w.defaultMargins.Left+1, y1, w.defaultMargins.Left+1, w.pdf.GetY())
		w.pdf.Ln(2)
	case edtypes.TypeCode:
		w.pdf.SetFont(w.mono, "", pdfTextSize-1)
		w.pdf.SetTextColor(0, 0, 0)
		w.SetHexFillColor("#f2f2f2")
		_, s := w.pdf.GetFontSize()
		w.pdf.MultiCell(0, s+1, w.tr(n.String()), "", "L", true)
		w.pdf.Ln(2)
	case edtypes.TypeList:
		w.writeList(n, 0)
		w.pdf.Ln(1.5)
	case edtypes.TypeImage:
		w.writeImage(n.Image())
		w.pdf.Ln(-1)
	case edtypes.TypeFile:
		if f := n.File(); f != nil {
			w.setFont("U", pdfTextSize)
			w.pdf.SetTextColor(0, 0, 238)
			w.write(mediaTitle(f), blocks.PrefixFileURL(w.opts.BackendURL, f.URL))
			w.pdf.Ln(-1)
		}
	}
}

func (w *pdfWriter) writeList(list *edtypes.Node, depth int) {
	left := w.defaultMargins.Left + 3 + float64(depth)*6
	num := 0
	for _, c := range list.Children {
		if c.Type == edtypes.TypeList {
			w.writeList(c, depth+1)
			continue
		}
		num++
		w.pdf.SetLeftMargin(left)
		w.pdf.SetX(left)
		w.setFont("", pdfTextSize)
		w.pdf.SetTextColor(0, 0, 0)
		w.write(listMarker(list.Format(), list.IndentLevel(), num))

		w.pdf.SetLeftMargin(left + 5)
		w.pdf.SetX(left + 5)
		w.writeInline(c.Children, pdfTextSize, "")
		w.pdf.Ln(-1)
	}
	w.pdf.SetLeftMargin(w.defaultMargins.Left)
}

// listMarker маркер элемента списка в стиле, который задает ListStyleType.
func listMarker(format edtypes.ListFormat, indentLevel, num int) string {
	switch blocks.ListStyleType(format, indentLevel) {
	case "decimal":
		return strconv.Itoa(num) + "."
	case "lower-alpha":
		return alphaNumber(num) + "."
	case "upper-roman":
		return romanNumber(num) + "."
	case "circle":
		return "o"
	case "square":
		return "-"
	}
	return "•"
}

func alphaNumber(n int) string {
	var res string
	for n > 0 {
		n--
		res = string(rune('a'+n%26)) + res
		n /= 26
	}
	return res
}

func romanNumber(n int) string {
	values := [...]int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := [...]string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range values {
		for n >= v {
			sb.WriteString(symbols[i])
			n -= v
		}
	}
	return sb.String()
}

func (w *pdfWriter) writeInline(nodes []*edtypes.Node, size float64, baseStyle string) {
	for _, n := range nodes {
		switch {
		case n.IsText():
			w.writeText(n, size, baseStyle, "")
		case n.Type == edtypes.TypeLink:
			for _, t := range n.Children {
				if t.IsText() {
					w.writeText(t, size, baseStyle, n.URL())
				}
			}
		}
	}
}

func (w *pdfWriter) writeText(t *edtypes.Node, size float64, baseStyle, link string) {
	if t.Text == "" {
		return
	}
	style := baseStyle
	if t.HasMark(edtypes.MarkBold) && !strings.Contains(style, "B") {
		style += "B"
	}
	if t.HasMark(edtypes.MarkItalic) && !strings.Contains(style, "I") {
		style += "I"
	}
	if t.HasMark(edtypes.MarkStrikethrough) {
		style += "S"
	}
	if t.HasMark(edtypes.MarkUnderline) || link != "" {
		style += "U"
	}

	if t.HasMark(edtypes.MarkCode) {
		w.pdf.SetFont(w.mono, style, size)
	} else {
		w.setFont(style, size)
	}
	if link != "" {
		w.pdf.SetTextColor(0, 0, 238)
	} else {
		w.pdf.SetTextColor(0, 0, 0)
	}
	w.write(t.Text, link)
}

func (w *pdfWriter) setFont(style string, size float64) {
	w.pdf.SetFont(w.family, style, size)
}

func (w *pdfWriter) write(text string, link ...string) {
	_, s := w.pdf.GetFontSize()
	s += 0.1
	target := ""
	if len(link) > 0 {
		target = link[0]
	}
	w.pdf.WriteLinkString(s+1, w.tr(text), target)
}

// cleanUnsupportedSymbols удаляет символы вне базовой плоскости Unicode, которых нет в TTF шрифтах.
func cleanUnsupportedSymbols(text string) string {
	var sb strings.Builder
	for _, s := range text {
		if s < 65536 {
			sb.WriteRune(s)
		}
	}
	return sb.String()
}

func (w *pdfWriter) registerImage(url string) *fpdf.ImageInfoType {
	if info := w.pdf.GetImageInfo(url); info != nil {
		return info
	}
	if w.opts.ImageLoader == nil {
		return nil
	}

	body, mime, err := w.opts.ImageLoader(w.ctx, url)
	if err != nil {
		slog.Warn("Load image for pdf", "url", url, "err", err)
		return nil
	}
	defer body.Close()

	options := fpdf.ImageOptions{ImageType: w.pdf.ImageTypeFromMime(mime), ReadDpi: true}
	// unsupported image type
	if options.ImageType == "" {
		w.pdf.ClearError()
		return nil
	}

	info := w.pdf.RegisterImageOptionsReader(url, options, body)
	if !w.pdf.Ok() {
		slog.Warn("Register image for pdf", "url", url, "err", w.pdf.Error())
		w.pdf.ClearError()
		return nil
	}
	return info
}

func (w *pdfWriter) writeImage(img *edtypes.Media) {
	if img == nil {
		return
	}
	url := blocks.PrefixFileURL(w.opts.BackendURL, img.URL)

	if w.registerImage(url) == nil {
		w.setFont("U", pdfTextSize)
		w.pdf.SetTextColor(0, 0, 238)
		w.write("["+mediaTitle(img)+"]", url)
		return
	}

	maxX, _ := w.pdf.GetPageSize()
	left, _, right, _ := w.pdf.GetMargins()
	maxWidth := maxX - left - right

	width := maxWidth
	if img.Width > 0 {
		width = min(w.PxToUnit(img.Width), maxWidth)
	}
	w.pdf.ImageOptions(url, -1, -1, width, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, url)
}

func (w *pdfWriter) PxToUnit(px int) float64 {
	return w.pdf.PointConvert(float64(px) * 0.75)
}

func (w *pdfWriter) SetHexFillColor(hex string) {
	hex = strings.TrimPrefix(hex, "#")
	values, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return
	}
	w.pdf.SetFillColor(
		int(uint8(values>>16)),
		int(uint8((values>>8)&0xFF)),
		int(uint8(values&0xFF)),
	)
}

func (w *pdfWriter) resetMargins() {
	w.pdf.SetMargins(w.defaultMargins.Left, w.defaultMargins.Top, w.defaultMargins.Right)
}
