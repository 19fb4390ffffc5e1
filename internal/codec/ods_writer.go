package codec

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "sheetio/internal/errors"
	"sheetio/pkg/contracts/domain"
)

// odsWriter buffers table rows per sheet and packages the OpenDocument
// archive on Close
type odsWriter struct {
	out    io.Writer
	closer io.Closer
	sheets []*odsTable
	styles map[domain.Style]string
	order  []domain.Style
	closed bool
}

type odsTable struct {
	name    string
	rows    bytes.Buffer
	columns int
}

func newODSWriter(out io.Writer, closer io.Closer) *odsWriter {
	w := &odsWriter{
		out:    out,
		closer: closer,
		styles: make(map[domain.Style]string),
	}
	w.sheets = append(w.sheets, &odsTable{name: sheetDefaultName(1)})
	return w
}

func (w *odsWriter) current() *odsTable {
	return w.sheets[len(w.sheets)-1]
}

func (w *odsWriter) WriteRow(values []domain.Value, style *domain.Style) error {
	styleName := ""
	if style != nil {
		styleName = w.cellStyle(*style)
	}

	t := w.current()
	b := &t.rows
	b.WriteString("<table:table-row>")
	for _, v := range values {
		writeODSCell(b, v, styleName)
	}
	b.WriteString("</table:table-row>")

	if len(values) > t.columns {
		t.columns = len(values)
	}
	return nil
}

func (w *odsWriter) cellStyle(s domain.Style) string {
	if name, ok := w.styles[s]; ok {
		return name
	}
	name := fmt.Sprintf("ce%d", len(w.order)+1)
	w.styles[s] = name
	w.order = append(w.order, s)
	return name
}

func (w *odsWriter) SetSheetName(name string) error {
	if err := validateSheetName(name); err != nil {
		return err
	}
	cur := w.current()
	for _, t := range w.sheets {
		if t != cur && t.name == name {
			return apperrors.NewConfigError(fmt.Sprintf("duplicate sheet name %q", name), nil)
		}
	}
	cur.name = name
	return nil
}

func (w *odsWriter) AddSheet() error {
	w.sheets = append(w.sheets, &odsTable{name: w.unusedSheetName()})
	return nil
}

func (w *odsWriter) unusedSheetName() string {
	for n := len(w.sheets) + 1; ; n++ {
		name := sheetDefaultName(n)
		taken := false
		for _, t := range w.sheets {
			if t.name == name {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
	}
}

func (w *odsWriter) SupportsSheets() bool { return true }

func (w *odsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.writeArchive()
	if w.closer != nil {
		if closeErr := w.closer.Close(); err == nil {
			err = closeErr
		}
	}
	return ioError("failed to write ods content", err)
}

func (w *odsWriter) writeArchive() error {
	zw := zip.NewWriter(w.out)

	// the mimetype entry must come first and stay uncompressed
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(mt, odsMimeType); err != nil {
		return err
	}

	entries := []struct {
		name string
		body []byte
	}{
		{"META-INF/manifest.xml", []byte(odsManifest)},
		{"styles.xml", []byte(odsStyles)},
		{odsContentPath, w.content()},
	}
	for _, e := range entries {
		f, err := zw.Create(e.name)
		if err != nil {
			return err
		}
		if _, err := f.Write(e.body); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (w *odsWriter) content() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<office:document-content xmlns:office="%s" xmlns:style="%s" xmlns:text="%s" xmlns:table="%s" xmlns:fo="%s" office:version="1.2">`,
		nsOffice, nsStyle, nsText, nsTable, nsFO)

	b.WriteString("<office:automatic-styles>")
	for _, s := range w.order {
		writeODSStyle(&b, w.styles[s], s)
	}
	b.WriteString("</office:automatic-styles>")

	b.WriteString("<office:body><office:spreadsheet>")
	for _, t := range w.sheets {
		b.WriteString(`<table:table table:name="`)
		xmlEscape(&b, t.name)
		b.WriteString(`">`)
		columns := t.columns
		if columns < 1 {
			columns = 1
		}
		fmt.Fprintf(&b, `<table:table-column table:number-columns-repeated="%d"/>`, columns)
		if t.rows.Len() == 0 {
			b.WriteString("<table:table-row><table:table-cell/></table:table-row>")
		} else {
			b.Write(t.rows.Bytes())
		}
		b.WriteString("</table:table>")
	}
	b.WriteString("</office:spreadsheet></office:body></office:document-content>")
	return b.Bytes()
}

func writeODSStyle(b *bytes.Buffer, name string, s domain.Style) {
	fmt.Fprintf(b, `<style:style style:name="%s" style:family="table-cell">`, name)
	if s.FillColor != "" {
		fmt.Fprintf(b, `<style:table-cell-properties fo:background-color="#%s"/>`, domain.HexColor(s.FillColor))
	}
	b.WriteString("<style:text-properties")
	if s.Bold {
		b.WriteString(` fo:font-weight="bold"`)
	}
	if s.Italic {
		b.WriteString(` fo:font-style="italic"`)
	}
	if s.FontColor != "" {
		fmt.Fprintf(b, ` fo:color="#%s"`, domain.HexColor(s.FontColor))
	}
	if s.FontSize > 0 {
		fmt.Fprintf(b, ` fo:font-size="%spt"`, strconv.FormatFloat(s.FontSize, 'f', -1, 64))
	}
	b.WriteString("/></style:style>")
}

func writeODSCell(b *bytes.Buffer, v domain.Value, styleName string) {
	styleAttr := ""
	if styleName != "" {
		styleAttr = ` table:style-name="` + styleName + `"`
	}

	if v == nil {
		b.WriteString("<table:table-cell" + styleAttr + "/>")
		return
	}

	text, _ := domain.FormatValue(v)
	switch val := v.(type) {
	case bool:
		fmt.Fprintf(b, `<table:table-cell%s office:value-type="boolean" office:boolean-value="%t">`, styleAttr, val)
	case time.Time:
		fmt.Fprintf(b, `<table:table-cell%s office:value-type="date" office:date-value="%s">`, styleAttr, val.Format("2006-01-02T15:04:05"))
	default:
		if domain.IsNumber(v) {
			fmt.Fprintf(b, `<table:table-cell%s office:value-type="float" office:value="%s">`, styleAttr, text)
		} else {
			fmt.Fprintf(b, `<table:table-cell%s office:value-type="string">`, styleAttr)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		b.WriteString("<text:p>")
		writeODSText(b, line)
		b.WriteString("</text:p>")
	}
	b.WriteString("</table:table-cell>")
}

// writeODSText escapes a line of text, keeping runs of spaces and tabs
// that XML whitespace handling would otherwise collapse
func writeODSText(b *bytes.Buffer, line string) {
	spaces := 0
	flush := func(atStart bool) {
		switch {
		case spaces == 0:
		case atStart:
			fmt.Fprintf(b, `<text:s text:c="%d"/>`, spaces)
		case spaces == 1:
			b.WriteByte(' ')
		default:
			fmt.Fprintf(b, ` <text:s text:c="%d"/>`, spaces-1)
		}
		spaces = 0
	}

	start := true
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
			continue
		case '\t':
			flush(start)
			b.WriteString("<text:tab/>")
		default:
			flush(start)
			xmlEscape(b, string(r))
		}
		start = false
	}
	flush(start)
}

func xmlEscape(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

const odsManifest = xml.Header + `<manifest:manifest xmlns:manifest="` + nsManifest + `" manifest:version="1.2">` +
	`<manifest:file-entry manifest:full-path="/" manifest:version="1.2" manifest:media-type="` + odsMimeType + `"/>` +
	`<manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>` +
	`<manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/>` +
	`</manifest:manifest>`

const odsStyles = xml.Header + `<office:document-styles xmlns:office="` + nsOffice + `" xmlns:style="` + nsStyle +
	`" xmlns:fo="` + nsFO + `" office:version="1.2">` +
	`<office:styles><style:default-style style:family="table-cell">` +
	`<style:text-properties fo:font-size="10pt"/></style:default-style></office:styles>` +
	`</office:document-styles>`
