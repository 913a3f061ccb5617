package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/utility"
)

// Tên cột của bộ dữ liệu bán hàng, dùng luôn làm tên field trong document
const (
	FieldID            = "_id"
	FieldRegion        = "Region"
	FieldCountry       = "Country"
	FieldItemType      = "Item Type"
	FieldSalesChannel  = "Sales Channel"
	FieldOrderPriority = "Order Priority"
	FieldOrderDate     = "Order Date"
	FieldOrderID       = "Order ID"
	FieldShipDate      = "Ship Date"
	FieldUnitsSold     = "Units Sold"
	FieldUnitPrice     = "Unit Price"
	FieldUnitCost      = "Unit Cost"
	FieldTotalRevenue  = "Total Revenue"
	FieldTotalCost     = "Total Cost"
	FieldTotalProfit   = "Total Profit"

	// metadata tầng bronze
	FieldSourceRow  = "_source_row"
	FieldIngestedAt = "_ingested_at"
)

// knownFields là các field có kiểu riêng trong BronzeRecord/SilverRecord
var knownFields = map[string]bool{
	FieldID: true, FieldRegion: true, FieldCountry: true, FieldItemType: true,
	FieldSalesChannel: true, FieldOrderPriority: true, FieldOrderDate: true,
	FieldOrderID: true, FieldShipDate: true, FieldUnitsSold: true, FieldUnitPrice: true,
	FieldUnitCost: true, FieldTotalRevenue: true, FieldTotalCost: true, FieldTotalProfit: true,
	FieldSourceRow: true, FieldIngestedAt: true,
}

// SalesFields là phần nghiệp vụ dùng chung của bản ghi bronze và silver
type SalesFields struct {
	Region        *string  `json:"region" bson:"Region"`
	Country       *string  `json:"country" bson:"Country"`
	ItemType      *string  `json:"itemType" bson:"Item Type"`
	SalesChannel  *string  `json:"salesChannel" bson:"Sales Channel"`
	OrderPriority *string  `json:"orderPriority" bson:"Order Priority"`
	OrderID       *string  `json:"orderId" bson:"Order ID"` // Khóa nghiệp vụ
	ShipDate      *string  `json:"shipDate" bson:"Ship Date"`
	UnitPrice     *float64 `json:"unitPrice" bson:"Unit Price"`
	UnitCost      *float64 `json:"unitCost" bson:"Unit Cost"`
	TotalCost     *float64 `json:"totalCost" bson:"Total Cost"`
}

// stringField đọc field dạng text, null/thiếu → nil
func stringField(doc bson.M, key string) *string {
	v, ok := doc[key]
	if !ok || utility.IsNullValue(v) {
		return nil
	}
	s := utility.ToString(v)
	return &s
}

func int64Field(doc bson.M, key string) (*int64, error) {
	v, ok := doc[key]
	if !ok || utility.IsNullValue(v) {
		return nil, nil
	}
	n, err := utility.ToInt64(v)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", common.ErrDecode, key, err)
	}
	return &n, nil
}

func float64Field(doc bson.M, key string) (*float64, error) {
	v, ok := doc[key]
	if !ok || utility.IsNullValue(v) {
		return nil, nil
	}
	f, err := utility.ToFloat64(v)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", common.ErrDecode, key, err)
	}
	return &f, nil
}

// salesFieldsFromDocument đọc phần nghiệp vụ chung từ document, decimal đọc các field số thực
func salesFieldsFromDocument(doc bson.M, decimal func(bson.M, string) (*float64, error)) (SalesFields, error) {
	f := SalesFields{
		Region:        stringField(doc, FieldRegion),
		Country:       stringField(doc, FieldCountry),
		ItemType:      stringField(doc, FieldItemType),
		SalesChannel:  stringField(doc, FieldSalesChannel),
		OrderPriority: stringField(doc, FieldOrderPriority),
		OrderID:       stringField(doc, FieldOrderID),
		ShipDate:      stringField(doc, FieldShipDate),
	}
	var err error
	if f.UnitPrice, err = decimal(doc, FieldUnitPrice); err != nil {
		return f, err
	}
	if f.UnitCost, err = decimal(doc, FieldUnitCost); err != nil {
		return f, err
	}
	if f.TotalCost, err = decimal(doc, FieldTotalCost); err != nil {
		return f, err
	}
	return f, nil
}

// extraFields gom các field ngoài model để giữ nguyên qua các tầng
func extraFields(doc bson.M) map[string]interface{} {
	var extra map[string]interface{}
	for k, v := range doc {
		if knownFields[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]interface{})
		}
		extra[k] = v
	}
	return extra
}
