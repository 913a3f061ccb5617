// Package source đọc bảng dữ liệu phân tách (CSV, TSV, ...) hoặc Excel từ file, http(s) hoặc GCS.
package source

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/h2non/filetype"
	"github.com/jfyne/csvd"
	"github.com/tealeg/xlsx"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// Table là toàn bộ bảng nguồn đã nạp vào bộ nhớ
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable tạo Table, chuẩn hóa tên cột và độ dài từng dòng theo header.
// Thứ tự dòng giữ nguyên nên dòng i (từ 0) là bản ghi dữ liệu thứ i+1 của nguồn.
func NewTable(header []string, rows [][]string) *Table {
	header = RenameDuplicateColumns(EnsureColumnsHaveNames(header))
	t := &Table{Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		t.index[h] = i
	}
	for _, row := range rows {
		// chỉ bỏ dòng trắng thật sự; dòng chỉ có dấu phân cách (",,") vẫn là một bản ghi toàn null
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		normalized := make([]string, len(header))
		copy(normalized, row)
		t.Rows = append(t.Rows, normalized)
	}
	return t
}

// Len trả về số dòng dữ liệu
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn kiểm tra cột có trong header
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value trả về ô (row, column); ok=false khi bảng không có cột này
func (t *Table) Value(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok {
		return "", false
	}
	return t.Rows[row][i], true
}

// Parse nhận diện định dạng và parse bytes thành Table. Dòng đầu tiên là header.
func Parse(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", common.ErrSourceFormat)
	}

	var allrows [][]string
	kind, _ := filetype.Match(data)
	contentType := http.DetectContentType(data)

	if kind.Extension == "xlsx" || contentType == "application/zip" {
		xlsxFile, err := xlsx.OpenBinary(data)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to parse xlsx: %v", common.ErrSourceFormat, err)
		}
		sheetData, err := xlsxFile.ToSlice()
		if err != nil {
			return nil, fmt.Errorf("%w: unable to read excel data: %v", common.ErrSourceFormat, err)
		}
		if len(sheetData) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheet", common.ErrSourceFormat)
		}
		// dữ liệu nằm ở sheet đầu tiên
		allrows = sheetData[0]
	} else {
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
		// csvd tự nhận diện dấu phân cách
		csvReader := csvd.NewReader(bytes.NewReader(data))
		csvReader.FieldsPerRecord = -1
		rows, err := csvReader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: unable to read delimited text: %v", common.ErrSourceFormat, err)
		}
		allrows = rows
	}

	if len(allrows) == 0 {
		return nil, fmt.Errorf("%w: no header row", common.ErrSourceFormat)
	}

	header := make([]string, len(allrows[0]))
	for i, h := range allrows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return NewTable(header, allrows[1:]), nil
}

// EnsureColumnsHaveNames đặt tên "Unnamed: <i>" cho cột không có tên
func EnsureColumnsHaveNames(s []string) []string {
	result := make([]string, 0, len(s))
	for i, item := range s {
		if len(item) == 0 {
			result = append(result, fmt.Sprintf("Unnamed: %d", i))
		} else {
			result = append(result, item)
		}
	}
	return result
}

// RenameDuplicateColumns đổi tên cột trùng thành "<tên>.<n>"
func RenameDuplicateColumns(s []string) []string {
	seen := make(map[string]int, len(s))
	result := make([]string, 0, len(s))
	for _, item := range s {
		if n, ok := seen[item]; ok {
			seen[item] = n + 1
			result = append(result, fmt.Sprintf("%s.%d", item, n+1))
			continue
		}
		seen[item] = 0
		result = append(result, item)
	}
	return result
}
