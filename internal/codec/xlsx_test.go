package codec

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
	"sheetio/pkg/contracts/domain"
)

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.xlsx")
	header := domain.NewStyle().SetBold().SetFillColor("#ffcc00")

	w, err := CreateWriter(files.TypeXLSX, path, domain.DefaultDialect())
	require.NoError(t, err)
	assert.True(t, w.SupportsSheets())

	require.NoError(t, w.SetSheetName("People"))
	require.NoError(t, w.WriteRow(strRow("name", "age"), header))
	require.NoError(t, w.WriteRow([]domain.Value{"Ann", 30}, nil))
	require.NoError(t, w.WriteRow([]domain.Value{"Bob", nil, "x"}, nil))

	require.NoError(t, w.AddSheet())
	require.NoError(t, w.SetSheetName("Second"))
	require.NoError(t, w.WriteRow([]domain.Value{2.5, true}, nil))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"People", "Second"}, f.GetSheetList())

	styleID, err := f.GetCellStyle("People", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, 1, style.Fill.Pattern)

	plain, err := f.GetCellStyle("People", "A2")
	require.NoError(t, err)
	assert.NotEqual(t, styleID, plain, "only the header row is styled")
	require.NoError(t, f.Close())

	r, err := OpenReader(files.TypeXLSX, path, domain.DefaultDialect())
	require.NoError(t, err)
	defer r.Close()

	sheets := readAll(t, r)
	assert.Equal(t, [][]domain.Value{
		strRow("name", "age", ""),
		strRow("Ann", "30", ""),
		strRow("Bob", "", "x"),
	}, sheets["People"])
	assert.Equal(t, [][]domain.Value{strRow("2.5", "TRUE")}, sheets["Second"])
}

func TestXLSXSheetOrderAndIndex(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(files.TypeXLSX, &buf, domain.DefaultDialect())
	require.NoError(t, err)

	for i, name := range []string{"first", "second", "third"} {
		if i > 0 {
			require.NoError(t, w.AddSheet())
		}
		require.NoError(t, w.SetSheetName(name))
		require.NoError(t, w.WriteRow(strRow(name), nil))
	}
	require.NoError(t, w.Close())

	r, err := NewReader(files.TypeXLSX, bytes.NewReader(buf.Bytes()), int64(buf.Len()), domain.DefaultDialect())
	require.NoError(t, err)
	defer r.Close()

	for i, name := range []string{"first", "second", "third"} {
		sheet, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, i+1, sheet.Index())
		assert.Equal(t, name, sheet.Name())
	}
}

func TestXLSXSkipsEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(files.TypeXLSX, &buf, domain.DefaultDialect())
	require.NoError(t, err)
	require.NoError(t, w.WriteRow(strRow("a", ""), nil))
	require.NoError(t, w.WriteRow(strRow("", ""), nil))
	require.NoError(t, w.WriteRow([]domain.Value{nil, nil}, nil))
	require.NoError(t, w.WriteRow(strRow("b"), nil))
	require.NoError(t, w.Close())

	r, err := NewReader(files.TypeXLSX, bytes.NewReader(buf.Bytes()), int64(buf.Len()), domain.DefaultDialect())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, [][]domain.Value{strRow("a", ""), strRow("b", "")}, readAll(t, r)["Sheet1"])
}

func TestXLSXKeepsTrailingBlankStrings(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(files.TypeXLSX, &buf, domain.DefaultDialect())
	require.NoError(t, err)
	require.NoError(t, w.WriteRow(strRow("x", "", ""), nil))
	require.NoError(t, w.WriteRow(strRow("y", "z", ""), nil))
	require.NoError(t, w.AddSheet())
	require.NoError(t, w.WriteRow(strRow("only"), nil))
	require.NoError(t, w.Close())

	r, err := NewReader(files.TypeXLSX, bytes.NewReader(buf.Bytes()), int64(buf.Len()), domain.DefaultDialect())
	require.NoError(t, err)
	defer r.Close()

	sheets := readAll(t, r)
	assert.Equal(t, [][]domain.Value{strRow("x", "", ""), strRow("y", "z", "")}, sheets["Sheet1"])
	assert.Equal(t, [][]domain.Value{strRow("only")}, sheets["Sheet2"], "width is measured per sheet")
}

func TestXLSXSheetNames(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(files.TypeXLSX, &buf, domain.DefaultDialect())
	require.NoError(t, err)

	assert.ErrorIs(t, w.SetSheetName("bad/name"), apperrors.ErrConfiguration)

	require.NoError(t, w.SetSheetName("Data"))
	require.NoError(t, w.AddSheet())
	require.NoError(t, w.SetSheetName("Data"))
	assert.ErrorIs(t, w.Close(), apperrors.ErrConfiguration, "duplicate names surface when the sheet is finished")
}

func TestXLSXDefaultSheetNamesStayUnique(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(files.TypeXLSX, &buf, domain.DefaultDialect())
	require.NoError(t, err)

	require.NoError(t, w.SetSheetName("Sheet2"))
	require.NoError(t, w.AddSheet())
	require.NoError(t, w.Close())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet2", "Sheet3"}, f.GetSheetList())
}
