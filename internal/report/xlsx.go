package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/KaramelBytes/outliers-cli/internal/utils"
)

// XLSXSink writes rows to a single-sheet workbook. Strings are stored inline
// and values as numeric cells, so no shared-strings part is needed.
type XLSXSink struct {
	Path string
	// Sheet defaults to "Results".
	Sheet string
}

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
		`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
		`</Types>`
	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
		`</Relationships>`
	workbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
		`</Relationships>`
)

func (s XLSXSink) WriteRows(rows []Row) error {
	sheet := s.Sheet
	if sheet == "" {
		sheet = "Results"
	}
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"xl/workbook.xml", workbookXML(sheet)},
		{"xl/_rels/workbook.xml.rels", workbookRelsXML},
		{"xl/worksheets/sheet1.xml", worksheetXML(rows)},
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	if err := utils.SafeWriteFile(s.Path, buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func workbookXML(sheet string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>`)
	b.WriteString(`<sheet name="`)
	escape(&b, sheet)
	b.WriteString(`" sheetId="1" r:id="rId1"/></sheets></workbook>`)
	return b.String()
}

func worksheetXML(rows []Row) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	writeRow(&b, 1, []sheetCell{{text: Header[0]}, {text: Header[1]}, {text: Header[2]}})
	for i, r := range rows {
		writeRow(&b, i+2, []sheetCell{{text: r.Column}, numberCell(r.Original), numberCell(r.Cleaned)})
	}
	b.WriteString(`</sheetData></worksheet>`)
	return b.String()
}

type sheetCell struct {
	text   string
	num    string
	isNum  bool
	isNone bool
}

func numberCell(c Cell) sheetCell {
	if c.Blank {
		return sheetCell{isNone: true}
	}
	return sheetCell{num: FormatValue(c.Value), isNum: true}
}

func writeRow(b *strings.Builder, n int, cells []sheetCell) {
	fmt.Fprintf(b, `<row r="%d">`, n)
	for i, c := range cells {
		ref := fmt.Sprintf("%s%d", columnName(i), n)
		switch {
		case c.isNone:
			continue
		case c.isNum:
			fmt.Fprintf(b, `<c r="%s"><v>%s</v></c>`, ref, c.num)
		default:
			fmt.Fprintf(b, `<c r="%s" t="inlineStr"><is><t>`, ref)
			escape(b, c.text)
			b.WriteString(`</t></is></c>`)
		}
	}
	b.WriteString(`</row>`)
}

// columnName converts a 0-based index to a column letter sequence (0 -> A).
func columnName(i int) string {
	name := ""
	for i++; i > 0; i = (i - 1) / 26 {
		name = string(rune('A'+(i-1)%26)) + name
	}
	return name
}

func escape(b *strings.Builder, s string) {
	_ = xml.EscapeText(b, []byte(s))
}
