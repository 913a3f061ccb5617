// Package models định nghĩa bản ghi của từng tầng bronze, silver, gold.
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/utility"
)

// BronzeRecord là một dòng nguồn thô, giữ nguyên text của các cột ngày
type BronzeRecord struct {
	ID           string `json:"id" bson:"_id"`
	SalesFields  `bson:",inline"`
	OrderDate    *string  `json:"orderDate" bson:"Order Date"` // Text gốc
	UnitsSold    *int64   `json:"unitsSold" bson:"Units Sold"`
	TotalRevenue *float64 `json:"totalRevenue" bson:"Total Revenue"`
	TotalProfit  *float64 `json:"totalProfit" bson:"Total Profit"`

	// ===== METADATA =====
	SourceRow  int64     `json:"sourceRow" bson:"_source_row"`    // Số thứ tự dòng dữ liệu trong file nguồn (từ 1)
	IngestedAt time.Time `json:"ingestedAt" bson:"_ingested_at"` // Thời điểm nạp

	Extra map[string]interface{} `json:"extra,omitempty" bson:",inline"` // Các cột nguồn ngoài model

	// Text gốc của ô số không parse được, theo tên cột. Khi lưu, text này
	// nằm ở chính field đó thay cho null.
	Invalid map[string]string `json:"invalid,omitempty" bson:"-"`
}

// MarshalBSON ghi bản ghi như struct thường rồi đặt lại text gốc cho các ô số lỗi
func (r BronzeRecord) MarshalBSON() ([]byte, error) {
	type plain BronzeRecord
	data, err := bson.Marshal(plain(r))
	if err != nil || len(r.Invalid) == 0 {
		return data, err
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for i := range doc {
		if raw, ok := r.Invalid[doc[i].Key]; ok {
			doc[i].Value = raw
		}
	}
	return bson.Marshal(doc)
}

func (r *BronzeRecord) keepInvalid(column, raw string) {
	if r.Invalid == nil {
		r.Invalid = make(map[string]string)
	}
	r.Invalid[column] = raw
}

// CellGetter là nguồn ô dữ liệu của một dòng; ok=false khi bảng không có cột
type CellGetter func(column string) (value string, ok bool)

// CellWarning mô tả một ô số không parse được, ô đó giữ nguyên text gốc
type CellWarning struct {
	Column string
	Value  string
	Err    error
}

func (w CellWarning) String() string {
	return fmt.Sprintf("column %q value %q: %v", w.Column, w.Value, w.Err)
}

// NewBronzeRecord dựng BronzeRecord từ một dòng nguồn.
// Ô rỗng hoặc thiếu cột → nil. Ô số không parse được giữ text gốc trong Invalid kèm cảnh báo.
func NewBronzeRecord(id string, sourceRow int64, ingestedAt time.Time, columns []string, cell CellGetter) (BronzeRecord, []CellWarning) {
	var warnings []CellWarning
	invalid := make(map[string]string)

	text := func(column string) *string {
		v, ok := cell(column)
		if !ok || utility.IsNullValue(v) {
			return nil
		}
		return &v
	}
	integer := func(column string) *int64 {
		v, ok := cell(column)
		if !ok {
			return nil
		}
		n, err := utility.ParseInt64Cell(v)
		if err != nil {
			warnings = append(warnings, CellWarning{Column: column, Value: v, Err: err})
			invalid[column] = v
			return nil
		}
		return n
	}
	decimal := func(column string) *float64 {
		v, ok := cell(column)
		if !ok {
			return nil
		}
		f, err := utility.ParseFloat64Cell(v)
		if err != nil {
			warnings = append(warnings, CellWarning{Column: column, Value: v, Err: err})
			invalid[column] = v
			return nil
		}
		return f
	}

	r := BronzeRecord{
		ID: id,
		SalesFields: SalesFields{
			Region:        text(FieldRegion),
			Country:       text(FieldCountry),
			ItemType:      text(FieldItemType),
			SalesChannel:  text(FieldSalesChannel),
			OrderPriority: text(FieldOrderPriority),
			OrderID:       text(FieldOrderID),
			ShipDate:      text(FieldShipDate),
			UnitPrice:     decimal(FieldUnitPrice),
			UnitCost:      decimal(FieldUnitCost),
			TotalCost:     decimal(FieldTotalCost),
		},
		OrderDate:    text(FieldOrderDate),
		UnitsSold:    integer(FieldUnitsSold),
		TotalRevenue: decimal(FieldTotalRevenue),
		TotalProfit:  decimal(FieldTotalProfit),
		SourceRow:    sourceRow,
		IngestedAt:   ingestedAt.UTC(),
	}
	for column, raw := range invalid {
		r.keepInvalid(column, raw)
	}

	for _, column := range columns {
		if knownFields[column] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]interface{})
		}
		if v := text(column); v != nil {
			r.Extra[column] = *v
		} else {
			r.Extra[column] = nil
		}
	}
	return r, warnings
}

// BronzeFromDocument đọc BronzeRecord từ document tầng bronze.
// Ô số dạng text không parse được là text gốc của nguồn, được đưa vào Invalid.
func BronzeFromDocument(doc bson.M) (BronzeRecord, error) {
	r := BronzeRecord{
		ID:        utility.ToString(doc[FieldID]),
		OrderDate: stringField(doc, FieldOrderDate),
		Extra:     extraFields(doc),
	}
	decimal := func(doc bson.M, key string) (*float64, error) {
		return rawOr(&r, doc, key, float64Field)
	}

	var err error
	if r.SalesFields, err = salesFieldsFromDocument(doc, decimal); err != nil {
		return r, err
	}
	if r.UnitsSold, err = rawOr(&r, doc, FieldUnitsSold, int64Field); err != nil {
		return r, err
	}
	if r.TotalRevenue, err = decimal(doc, FieldTotalRevenue); err != nil {
		return r, err
	}
	if r.TotalProfit, err = decimal(doc, FieldTotalProfit); err != nil {
		return r, err
	}

	if row, ok := doc[FieldSourceRow]; ok && !utility.IsNullValue(row) {
		if r.SourceRow, err = utility.ToInt64(row); err != nil {
			return r, fmt.Errorf("%w: field %q: %v", common.ErrDecode, FieldSourceRow, err)
		}
	}
	if at, ok := doc[FieldIngestedAt]; ok {
		t, err := utility.ToTime(at)
		if err != nil {
			return r, fmt.Errorf("%w: field %q: %v", common.ErrDecode, FieldIngestedAt, err)
		}
		if t != nil {
			r.IngestedAt = *t
		}
	}
	return r, nil
}

// rawOr decode field số; nếu giá trị là text không parse được thì giữ text đó vào r.Invalid
func rawOr[T any](r *BronzeRecord, doc bson.M, key string, decode func(bson.M, string) (*T, error)) (*T, error) {
	v, err := decode(doc, key)
	if err == nil {
		return v, nil
	}
	if raw, ok := doc[key].(string); ok {
		r.keepInvalid(key, raw)
		return nil, nil
	}
	return nil, err
}
