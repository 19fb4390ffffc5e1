package codec

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
	"sheetio/pkg/contracts/domain"
)

func writeODS(t *testing.T, write func(w Writer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(files.TypeODS, &buf, domain.DefaultDialect())
	require.NoError(t, err)
	write(w)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readODSBytes(t *testing.T, data []byte) map[string][][]domain.Value {
	t.Helper()
	r, err := NewReader(files.TypeODS, bytes.NewReader(data), int64(len(data)), domain.DefaultDialect())
	require.NoError(t, err)
	defer r.Close()
	return readAll(t, r)
}

func zipEntry(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatalf("zip entry %s not found", name)
	return ""
}

func TestODSRoundTripTypedValues(t *testing.T) {
	when := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	data := writeODS(t, func(w Writer) {
		require.NoError(t, w.SetSheetName("Scores"))
		require.NoError(t, w.WriteRow(strRow("name", "score", "ok", "when"), nil))
		require.NoError(t, w.WriteRow([]domain.Value{"Ann", 9.5, true, when}, nil))
		require.NoError(t, w.WriteRow([]domain.Value{"  two  spaces\tand tab", nil, 3}, nil))
		require.NoError(t, w.WriteRow([]domain.Value{"line one\nline <two> & more"}, nil))
	})

	sheets := readODSBytes(t, data)
	assert.Equal(t, [][]domain.Value{
		strRow("name", "score", "ok", "when"),
		{"Ann", 9.5, true, when},
		{"  two  spaces\tand tab", nil, float64(3)},
		{"line one\nline <two> & more"},
	}, sheets["Scores"])
}

func TestODSPackageLayout(t *testing.T) {
	data := writeODS(t, func(w Writer) {
		require.NoError(t, w.WriteRow(strRow("h"), domain.NewStyle().SetBold().SetFontColor("ff0000")))
	})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.NotEmpty(t, zr.File)
	assert.Equal(t, "mimetype", zr.File[0].Name)
	assert.Equal(t, zip.Store, zr.File[0].Method)

	assert.Equal(t, odsMimeType, zipEntry(t, data, "mimetype"))
	assert.Contains(t, zipEntry(t, data, "META-INF/manifest.xml"), odsMimeType)

	content := zipEntry(t, data, "content.xml")
	assert.Contains(t, content, `style:name="ce1"`)
	assert.Contains(t, content, `fo:font-weight="bold"`)
	assert.Contains(t, content, `fo:color="#FF0000"`)
	assert.Contains(t, content, `table:style-name="ce1"`)
}

func TestODSMultipleSheets(t *testing.T) {
	data := writeODS(t, func(w Writer) {
		require.NoError(t, w.WriteRow(strRow("a"), nil))
		require.NoError(t, w.AddSheet())
		require.NoError(t, w.SetSheetName("Named"))
		require.NoError(t, w.WriteRow(strRow("b"), nil))
		require.NoError(t, w.AddSheet())
	})

	r, err := NewReader(files.TypeODS, bytes.NewReader(data), int64(len(data)), domain.DefaultDialect())
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for {
		sheet, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, len(names)+1, sheet.Index())
		names = append(names, sheet.Name())
	}
	assert.Equal(t, []string{"Sheet1", "Named", "Sheet3"}, names)

	sheets := readODSBytes(t, data)
	assert.Equal(t, [][]domain.Value{strRow("a")}, sheets["Sheet1"])
	assert.Equal(t, [][]domain.Value{strRow("b")}, sheets["Named"])
	assert.Empty(t, sheets["Sheet3"])
}

func TestODSDuplicateSheetName(t *testing.T) {
	w := newODSWriter(io.Discard, nil)
	require.NoError(t, w.SetSheetName("Data"))
	require.NoError(t, w.AddSheet())
	assert.ErrorIs(t, w.SetSheetName("Data"), apperrors.ErrConfiguration)
	assert.NoError(t, w.SetSheetName("Other"))
}

func TestODSReaderRepeatedCells(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="` + nsOffice + `" xmlns:table="` + nsTable + `" xmlns:text="` + nsText + `">
<office:body><office:spreadsheet>
<table:table table:name="Rep">
<table:table-column table:number-columns-repeated="1024"/>
<table:table-row table:number-rows-repeated="2">
<table:table-cell office:value-type="string"><text:p>x</text:p></table:table-cell>
<table:table-cell table:number-columns-repeated="2"/>
<table:table-cell office:value-type="float" office:value="1" table:number-columns-repeated="2"><text:p>1</text:p></table:table-cell>
<table:table-cell table:number-columns-repeated="1019"/>
</table:table-row>
<table:table-row table:number-rows-repeated="1048574"><table:table-cell table:number-columns-repeated="1024"/></table:table-row>
<table:table-row><table:table-cell><text:p>a<text:s text:c="3"/>b<text:line-break/>c</text:p><office:annotation><text:p>note</text:p></office:annotation></table:table-cell></table:table-row>
</table:table>
</office:spreadsheet></office:body></office:document-content>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("content.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	sheets := readODSBytes(t, buf.Bytes())
	row := []domain.Value{"x", nil, nil, 1.0, 1.0}
	assert.Equal(t, [][]domain.Value{row, row, {"a   b\nc"}}, sheets["Rep"])
}

func TestODSMissingContent(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("mimetype")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewReader(files.TypeODS, bytes.NewReader(buf.Bytes()), int64(buf.Len()), domain.DefaultDialect())
	assert.ErrorIs(t, err, apperrors.ErrIO)
}

func TestODSFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "book.ods")

	w, err := CreateWriter(files.TypeODS, path, domain.DefaultDialect())
	require.NoError(t, err)
	require.NoError(t, w.WriteRow(strRow("k", "v"), nil))
	require.NoError(t, w.Close())

	r, err := OpenReader(files.TypeODS, path, domain.DefaultDialect())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, [][]domain.Value{strRow("k", "v")}, readAll(t, r)["Sheet1"])
}
