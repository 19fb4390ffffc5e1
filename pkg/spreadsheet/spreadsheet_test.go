package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"sheetio/internal/dataprocessing"
	"sheetio/internal/shared/testutil"
	"sheetio/pkg/contracts/domain"
)

func people() domain.RecordSet {
	return domain.RecordSet{
		domain.NewRecord("name", "Ann", "city", "Oslo", "age", "30"),
		domain.NewRecord("name", "Bob", "city", "Lima", "age", "41"),
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{"csv", "xlsx", "ods"} {
		t.Run(ext, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "people."+ext)

			written, err := New().Data(people()).Export(ctx, path, nil)
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(written))

			got, err := New().Import(ctx, path, nil)
			require.NoError(t, err)
			assert.Equal(t, people(), got)
		})
	}
}

func TestRoundTripTrailingBlankStrings(t *testing.T) {
	withHeader := domain.RecordSet{
		domain.NewRecord("a", "x", "b", ""),
		domain.NewRecord("a", "y", "b", "z"),
	}
	positional := domain.RecordSet{
		domain.Positional("x", ""),
		domain.Positional("y", "z"),
	}

	for _, ext := range []string{"csv", "xlsx", "ods"} {
		t.Run(ext, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			path := filepath.Join(dir, "header."+ext)
			_, err := New().Data(withHeader).Export(ctx, path, nil)
			require.NoError(t, err)
			got, err := New().Import(ctx, path, nil)
			require.NoError(t, err)
			assert.Equal(t, withHeader, got)

			path = filepath.Join(dir, "plain."+ext)
			_, err = New().WithoutHeaders().Data(positional).Export(ctx, path, nil)
			require.NoError(t, err)
			got, err = New().WithoutHeaders().Import(ctx, path, nil)
			require.NoError(t, err)
			assert.Equal(t, positional, got)
		})
	}
}

func TestImportPadsAndTruncatesRows(t *testing.T) {
	path := writeFile(t, "short.csv", "a,b,c\n1,2\n1,2,3,4\n")

	logger, logs := testutil.NewTestLogger(t)
	got, err := New().Logger(logger).Import(context.Background(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.RecordSet{
		domain.NewRecord("a", "1", "b", "2", "c", nil),
		domain.NewRecord("a", "1", "b", "2", "c", "3"),
	}, got)
	assert.True(t, logs.ContainsMessage("Rows reconciled to header length"))
	assert.True(t, logs.ContainsAttr("component", "spreadsheet"))
}

func TestImportWithoutHeaders(t *testing.T) {
	path := writeFile(t, "plain.csv", "x,y\n1\n")

	got, err := New().WithoutHeaders().Import(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordSet{
		domain.Positional("x", "y"),
		domain.Positional("1"),
	}, got)
}

func TestImportFilter(t *testing.T) {
	path := writeFile(t, "cols.csv", "col1,col2\na,skip\nb,keep\n")

	rename := func(r domain.Record) (domain.Outcome, error) {
		v, _ := r.Get("col1")
		return domain.Keep(domain.NewRecord("test", v)), nil
	}
	got, err := New().Import(context.Background(), path, rename)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordSet{
		domain.NewRecord("test", "a"),
		domain.NewRecord("test", "b"),
	}, got)

	onlyKeep := dataprocessing.Where(func(r domain.Record) bool {
		v, _ := r.Get("col2")
		return v == "keep"
	})
	got, err = New().Import(context.Background(), path, onlyKeep)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordSet{domain.NewRecord("col1", "b", "col2", "keep")}, got)
}

func TestImportCallbackErrorIsReturnedUnchanged(t *testing.T) {
	path := writeFile(t, "cols.csv", "a\n1\n")
	boom := errors.New("boom")

	_, err := New().Import(context.Background(), path, func(domain.Record) (domain.Outcome, error) {
		return domain.Outcome{}, boom
	})
	assert.Same(t, boom, err)
}

func TestImportSheetSelection(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	_, err := New().Sheets(domain.SheetCollection{
		{Name: "First", Records: domain.RecordSet{domain.NewRecord("k", "one")}},
		{Name: "Second", Records: domain.RecordSet{domain.NewRecord("k", "two")}},
	}).Export(ctx, path, nil)
	require.NoError(t, err)

	got, err := New().Sheet(2).Import(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordSet{domain.NewRecord("k", "two")}, got)

	for _, n := range []int{0, 3} {
		got, err = New().Sheet(n).Import(ctx, path, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}

	sheets, err := New().ImportSheets(ctx, path, nil)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "First", sheets[0].Name)
	assert.Equal(t, "Second", sheets[1].Name)
}

func TestMultiSheetExport(t *testing.T) {
	for _, ext := range []string{"xlsx", "ods"} {
		t.Run(ext, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "book."+ext)
			payload := domain.SheetCollection{
				{Name: "People", Records: people()},
				{Records: domain.RecordSet{domain.NewRecord("n", "1")}},
				{Name: "Empty"},
			}

			_, err := New().Sheets(payload).
				HeaderStyle(domain.NewStyle().SetBold()).
				Export(ctx, path, nil)
			require.NoError(t, err)

			sheets, err := New().ImportSheets(ctx, path, nil)
			require.NoError(t, err)
			require.Len(t, sheets, 3)
			assert.Equal(t, "People", sheets[0].Name)
			assert.Equal(t, people(), sheets[0].Records)
			assert.Equal(t, "Sheet2", sheets[1].Name)
			assert.Equal(t, domain.RecordSet{domain.NewRecord("n", "1")}, sheets[1].Records)
			assert.Equal(t, "Empty", sheets[2].Name)
			assert.Empty(t, sheets[2].Records)
		})
	}
}

func TestExportCSVRejectsSeveralSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := New().Sheets(domain.SheetCollection{{}, {}}).Export(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.NoFileExists(t, path)
}

func TestExportCoercesValues(t *testing.T) {
	rs := domain.RecordSet{
		domain.NewRecord("n", 1, "ok", true, "bad", struct{}{}, "f", 2.5),
	}

	var buf bytes.Buffer
	logger, logs := testutil.NewTestLogger(t)
	err := New().Logger(logger).ConfigureCSV(domain.WithBOM(false)).Data(rs).
		Download(context.Background(), &buf, "out.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "n,ok,f\n1,true,2.5\n", buf.String())
	assert.True(t, logs.ContainsMessage("Unsupported cell values replaced"))

	buf.Reset()
	err = New().ConfigureCSV(domain.WithBOM(false)).Unsupported(BlankUnsupported).Data(rs).
		Download(context.Background(), &buf, "out.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "n,ok,bad,f\n1,true,,2.5\n", buf.String())
}

func TestConfigureCSVMergesOptions(t *testing.T) {
	var buf bytes.Buffer
	err := New().ConfigureCSV(domain.WithDelimiter(';')).
		Data(domain.RecordSet{domain.NewRecord("a", "1", "b", "2")}).
		Download(context.Background(), &buf, "out.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFa;b\n1;2\n", buf.String())

	buf.Reset()
	err = New().ConfigureCSV(domain.WithDelimiter(';')).ConfigureCSV(domain.WithBOM(false)).
		Data(domain.RecordSet{domain.NewRecord("a", "1")}).
		Download(context.Background(), &buf, "out.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", buf.String())
}

func TestExportMapperKeepsRowCount(t *testing.T) {
	var buf bytes.Buffer
	upper := func(r domain.Record) (domain.Record, error) {
		v, _ := r.Get("name")
		return domain.NewRecord("NAME", strings.ToUpper(v.(string))), nil
	}

	err := New().ConfigureCSV(domain.WithBOM(false)).Data(people()).
		Download(context.Background(), &buf, "x.csv", upper)
	require.NoError(t, err)
	assert.Equal(t, "NAME\nANN\nBOB\n", buf.String())
}

func TestExportWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	err := New().WithoutHeaders().ConfigureCSV(domain.WithBOM(false)).Data(people()).
		Download(context.Background(), &buf, "x.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ann,Oslo,30\nBob,Lima,41\n", buf.String())
}

func TestExportMapperErrorRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	boom := errors.New("boom")

	_, err := New().Data(people()).Export(context.Background(), path, func(domain.Record) (domain.Record, error) {
		return nil, boom
	})
	assert.Same(t, boom, err)
	assert.NoFileExists(t, path)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFile(t, "a.csv", "a\n1\n")
	_, err := New().Import(ctx, path, nil)
	assert.ErrorIs(t, err, context.Canceled)

	out := filepath.Join(t.TempDir(), "b.xlsx")
	_, err = New().Data(people()).Export(ctx, out, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
}

func TestUnsupportedDialectAndMissingFile(t *testing.T) {
	ctx := context.Background()

	_, err := New().ConfigureCSV(domain.WithEncoding("klingon-8")).Import(ctx, writeFile(t, "a.csv", "a\n"), nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New().Import(ctx, filepath.Join(t.TempDir(), "missing.xlsx"), nil)
	assert.ErrorIs(t, err, ErrIO)
}

func TestImportFrom(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Data(people()).Download(context.Background(), &buf, "upload.ods", nil))

	data := buf.Bytes()
	got, err := New().ImportFrom(context.Background(), bytes.NewReader(data), int64(len(data)), "upload.ods", nil)
	require.NoError(t, err)
	assert.Equal(t, people(), got)

	sheets, err := New().ImportSheetsFrom(context.Background(), bytes.NewReader(data), int64(len(data)), "upload.ods", nil)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "Sheet1", sheets[0].Name)
}

func TestSessionSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := New().Telemetry(Telemetry{Tracer: tp.Tracer("test")}).Logger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	path := filepath.Join(t.TempDir(), "spans.csv")

	_, err := s.Data(people()).Export(context.Background(), path, nil)
	require.NoError(t, err)
	_, err = s.Import(context.Background(), path, nil)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "spreadsheet.export", spans[0].Name())
	assert.Equal(t, "spreadsheet.import", spans[1].Name())

	rows := -1
	for _, kv := range spans[1].Attributes() {
		if kv.Key == "sheetio.rows" {
			rows = int(kv.Value.AsInt64())
		}
	}
	assert.Equal(t, 2, rows)
}

func TestCollect(t *testing.T) {
	type person struct{ Name string }

	got, err := Collect(people(), func(r domain.Record) (person, error) {
		v, _ := r.Get("name")
		return person{Name: v.(string)}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []person{{"Ann"}, {"Bob"}}, got)

	_, err = Collect(people(), func(domain.Record) (int, error) { return 0, ErrConfiguration })
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "row 1")
}
