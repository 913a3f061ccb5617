package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

const salesCSV = "Region,Country,Item Type,Order ID,Units Sold,Total Revenue\n" +
	"Asia,Japan,Cereal,100,5,10.5\n" +
	"Europe,France,Fruits,101,,\n"

func quietLogger() *logrus.Logger {
	log, _ := logrustest.NewNullLogger()
	return log
}

func TestParse_CSV(t *testing.T) {
	table, err := Parse([]byte(salesCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "Country", "Item Type", "Order ID", "Units Sold", "Total Revenue"}, table.Header)
	require.Equal(t, 2, table.Len())

	v, ok := table.Value(0, "Item Type")
	assert.True(t, ok)
	assert.Equal(t, "Cereal", v)

	v, ok = table.Value(1, "Units Sold")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = table.Value(0, "Ship Date")
	assert.False(t, ok)
	assert.False(t, table.HasColumn("Ship Date"))
}

func TestParse_TabSeparatedWithBOM(t *testing.T) {
	data := "\xef\xbb\xbfRegion\tCountry\tUnits Sold\nAsia\tJapan\t5\n"
	table, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "Country", "Units Sold"}, table.Header)
	v, _ := table.Value(0, "Units Sold")
	assert.Equal(t, "5", v)
}

func TestParse_KeepsDelimiterOnlyRowsAndPadsShortRows(t *testing.T) {
	data := "Region,Country,Units Sold\nAsia,Japan\n,,\nEurope,France,3\n"
	table, err := Parse([]byte(data))
	require.NoError(t, err)

	// dòng ",," là bản ghi toàn null, không bị bỏ
	require.Equal(t, 3, table.Len())
	v, ok := table.Value(0, "Units Sold")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, []string{"", "", ""}, table.Rows[1])
	v, _ = table.Value(2, "Country")
	assert.Equal(t, "France", v)
}

func TestNewTable_SkipsOnlyBlankLines(t *testing.T) {
	table := NewTable([]string{"A", "B"}, [][]string{{"1", "2"}, {}, {" "}, {"", ""}})
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"", ""}, table.Rows[1])
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, common.ErrSourceFormat)
}

func TestParse_XLSX(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales")
	require.NoError(t, err)
	for _, values := range [][]string{
		{"Region", "Country", "Units Sold"},
		{"Asia", "Japan", "5"},
		{"Europe", "France", "7"},
	} {
		row := sheet.AddRow()
		for _, value := range values {
			row.AddCell().SetString(value)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	table, err := Parse(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "Country", "Units Sold"}, table.Header)
	require.Equal(t, 2, table.Len())
	v, _ := table.Value(1, "Units Sold")
	assert.Equal(t, "7", v)
}

func TestHeaderNormalization(t *testing.T) {
	assert.Equal(t, []string{"A", "Unnamed: 1", "C"}, EnsureColumnsHaveNames([]string{"A", "", "C"}))
	assert.Equal(t, []string{"A", "B", "A.1", "A.2"}, RenameDuplicateColumns([]string{"A", "B", "A", "A"}))
}

func TestReader_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0644))

	r := NewReader(quietLogger())
	for _, location := range []string{path, "file://" + path} {
		table, err := r.Read(context.Background(), location)
		require.NoError(t, err, location)
		assert.Equal(t, 2, table.Len())
	}

	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, common.ErrSourceRead)
}

func TestReader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/sales_100.csv" {
			http.NotFound(w, req)
			return
		}
		_, _ = io.WriteString(w, salesCSV)
	}))
	defer srv.Close()

	r := NewReader(quietLogger())
	table, err := r.Read(context.Background(), srv.URL+"/sales_100.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	_, err = r.Read(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSourceRead)
	assert.Contains(t, err.Error(), "404")
}

func TestReader_HTTPRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, salesCSV)
	}))
	defer srv.Close()

	// mặc định không retry
	_, err := NewReader(quietLogger()).Read(context.Background(), srv.URL)
	assert.ErrorIs(t, err, common.ErrSourceRead)
	assert.Equal(t, 1, calls)

	calls = 0
	r := NewReader(quietLogger(), WithRetryMax(1))
	r.httpClient.RetryWaitMin = 0
	r.httpClient.RetryWaitMax = 0
	table, err := r.Read(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, calls)
}

func TestReader_GCS(t *testing.T) {
	var gotBucket, gotObject string
	opener := func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
		gotBucket, gotObject = bucket, object
		if object == "missing.csv" {
			return nil, errors.New("storage: object doesn't exist")
		}
		return io.NopCloser(strings.NewReader(salesCSV)), nil
	}
	r := NewReader(quietLogger(), WithObjectOpener(opener))

	table, err := r.Read(context.Background(), "gs://sales-bucket/raw/sales_100.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "sales-bucket", gotBucket)
	assert.Equal(t, "raw/sales_100.csv", gotObject)

	_, err = r.Read(context.Background(), "gs://sales-bucket/missing.csv")
	assert.ErrorIs(t, err, common.ErrSourceRead)

	_, err = r.Read(context.Background(), "gs://sales-bucket")
	assert.ErrorIs(t, err, common.ErrSourceRead)
}

func TestReader_UnsupportedScheme(t *testing.T) {
	_, err := NewReader(quietLogger()).Read(context.Background(), "ftp://host/sales.csv")
	assert.ErrorIs(t, err, common.ErrSourceRead)
}
