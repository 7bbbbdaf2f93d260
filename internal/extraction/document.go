package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/net/html"
)

// DecodeText recovers the raw text stream from receipt document bytes.
// PDF receipts are read from the text layer; HTML receipts are reduced to
// their visible text; plain text passes through. The declared content type
// drives dispatch, with a sniff fallback when the caller did not declare
// one. The returned text is not yet normalized.
func DecodeText(data []byte, contentType string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = sniffMediaType(data)
	}

	switch mediaType {
	case "application/pdf":
		return pdfText(data)
	case "text/html", "application/xhtml+xml":
		return htmlText(data)
	case "text/plain":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %q", mediaType)
	}
}

// sniffMediaType guesses the document type from its leading bytes.
func sniffMediaType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return "application/pdf"
	case bytes.Contains(bytes.ToLower(firstBytes(data, 512)), []byte("<html")):
		return "text/html"
	default:
		return ""
	}
}

func firstBytes(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}

// pdfText extracts the text layer from every page of a PDF.
func pdfText(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", fmt.Errorf("invalid PDF: missing header")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("reading PDF page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// htmlText walks the parsed document and collects visible text nodes,
// skipping script and style subtrees.
func htmlText(data []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String(), nil
}
