// Package extract turns uploaded resume documents into plain text.
package extract

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"resumescore/internal/errors"
	"resumescore/internal/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/net/html"
)

// Format is a document family with its own extraction strategy.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

var formatsByExtension = map[string]Format{
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatText,
	".markdown": FormatText,
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".doc":      FormatDOCX,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

type extractor func(data []byte) (string, error)

var extractors = map[Format]extractor{
	FormatText: fromText,
	FormatPDF:  fromPDF,
	FormatDOCX: fromDOCX,
	FormatHTML: fromHTML,
}

// SupportedExtensions lists the accepted file extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(formatsByExtension))
	for ext := range formatsByExtension {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Detect maps a filename to its document format by extension.
func Detect(filename string) (Format, error) {
	ext := utils.GetFileExtension(filename)
	if f, ok := formatsByExtension[ext]; ok {
		return f, nil
	}
	return "", errors.NewValidationError(errors.ErrCodeUnsupportedFileType,
		fmt.Sprintf("unsupported file type %q; accepted: %s", ext, strings.Join(SupportedExtensions(), ", ")), nil).
		WithContext("extension", ext)
}

// Text extracts the plain text of a document. The returned text is not
// trimmed; callers decide what counts as too little content.
func Text(filename string, data []byte) (string, error) {
	format, err := Detect(filename)
	if err != nil {
		return "", err
	}
	text, err := extractors[format](data)
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("cannot extract text from %s", filename), err).
			WithContext("format", string(format))
	}
	return text, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func fromText(data []byte) (string, error) {
	return strings.ToValidUTF8(string(bytes.TrimPrefix(data, utf8BOM)), ""), nil
}

func fromPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}

func fromDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxParagraphs(doc.Editable().GetContent())
}

// docxParagraphs reduces WordprocessingML to one line per non-empty paragraph.
func docxParagraphs(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx markup: %w", err)
	}

	var paragraphs []string
	doc.Find(`w\:p`).Each(func(_ int, p *goquery.Selection) {
		var b strings.Builder
		writeRuns(&b, p.Get(0))
		if text := strings.TrimSpace(b.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n"), nil
}

// writeRuns appends the text of n's runs in document order. Self-closing
// elements parse as open ones, so content can end up nested under w:tab or
// w:br and every element is descended into.
func writeRuns(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "w:p":
			// reached on its own
			continue
		case "w:t":
			for t := c.FirstChild; t != nil; t = t.NextSibling {
				if t.Type == html.TextNode {
					b.WriteString(t.Data)
				}
			}
		case "w:tab":
			b.WriteByte('\t')
		case "w:br", "w:cr":
			b.WriteByte('\n')
		}
		writeRuns(b, c)
	}
}

func fromHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find("script, style, noscript, iframe, template").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, dt, dd, td, address, pre").Each(func(_ int, s *goquery.Selection) {
		// nested blocks are reached on their own
		if s.Find("p, li").Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			text = "- " + text
		}
		blocks = append(blocks, text)
	})
	if len(blocks) > 0 {
		return strings.Join(blocks, "\n"), nil
	}

	return strings.TrimSpace(doc.Find("body").Text()), nil
}
