package plaintext

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// DOCXText returns the non-empty body paragraphs of a .docx file followed by
// one line per table row, with non-empty cells joined by " | ".
func DOCXText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return "", errors.New("docx has no " + docxBody)
}

type docxWalker struct {
	paragraphs []string
	rows       []string

	tableDepth int
	inText     bool
	para       strings.Builder
	cell       []string
	row        []string
}

func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	w := &docxWalker{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t.Name.Local)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			if w.inText {
				w.para.Write(t)
			}
		}
	}

	lines := append(w.paragraphs, w.rows...)
	return strings.Join(lines, "\n"), nil
}

func (w *docxWalker) start(name string) {
	switch name {
	case "tbl":
		w.tableDepth++
	case "tr":
		if w.tableDepth == 1 {
			w.row = w.row[:0]
		}
	case "tc":
		if w.tableDepth == 1 {
			w.cell = w.cell[:0]
		}
	case "p":
		w.para.Reset()
	case "t":
		w.inText = true
	case "tab":
		w.para.WriteByte('\t')
	case "br", "cr":
		w.para.WriteByte('\n')
	}
}

func (w *docxWalker) end(name string) {
	switch name {
	case "t":
		w.inText = false
	case "p":
		text := w.para.String()
		switch {
		case w.tableDepth == 0:
			if strings.TrimSpace(text) != "" {
				w.paragraphs = append(w.paragraphs, text)
			}
		case w.tableDepth == 1:
			w.cell = append(w.cell, text)
		}
	case "tc":
		if w.tableDepth == 1 {
			if text := strings.TrimSpace(strings.Join(w.cell, "\n")); text != "" {
				w.row = append(w.row, text)
			}
		}
	case "tr":
		if w.tableDepth == 1 && len(w.row) > 0 {
			w.rows = append(w.rows, strings.Join(w.row, " | "))
		}
	case "tbl":
		w.tableDepth--
	}
}
