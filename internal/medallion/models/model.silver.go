package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/utility"
)

// SilverRecord là bản ghi đã khử trùng lặp, các số đo chính luôn có giá trị
type SilverRecord struct {
	ID           string `json:"id" bson:"_id"`
	SalesFields  `bson:",inline"`
	OrderDate    *time.Time `json:"orderDate" bson:"Order Date"` // UTC, nil nếu không parse được
	UnitsSold    int64      `json:"unitsSold" bson:"Units Sold"`
	TotalRevenue float64    `json:"totalRevenue" bson:"Total Revenue"`
	TotalProfit  float64    `json:"totalProfit" bson:"Total Profit"`

	Extra map[string]interface{} `json:"extra,omitempty" bson:",inline"` // Các cột nguồn ngoài model
}

// SilverFromDocument đọc SilverRecord từ document tầng silver
func SilverFromDocument(doc bson.M) (SilverRecord, error) {
	r := SilverRecord{
		ID:    utility.ToString(doc[FieldID]),
		Extra: extraFields(doc),
	}

	var err error
	if r.SalesFields, err = salesFieldsFromDocument(doc, float64Field); err != nil {
		return r, err
	}
	units, err := int64Field(doc, FieldUnitsSold)
	if err != nil {
		return r, err
	}
	revenue, err := float64Field(doc, FieldTotalRevenue)
	if err != nil {
		return r, err
	}
	profit, err := float64Field(doc, FieldTotalProfit)
	if err != nil {
		return r, err
	}
	if units != nil {
		r.UnitsSold = *units
	}
	if revenue != nil {
		r.TotalRevenue = *revenue
	}
	if profit != nil {
		r.TotalProfit = *profit
	}
	if r.OrderDate, err = utility.ToTime(doc[FieldOrderDate]); err != nil {
		// ngày ở tầng silver đã chuẩn hóa, giá trị lạ coi như null
		r.OrderDate = nil
	}
	return r, nil
}

// Field trả về giá trị của field theo tên cột, con trỏ nil → nil.
// ok=false khi bản ghi không có field này (không thuộc model, không có trong Extra).
func (r SilverRecord) Field(name string) (value interface{}, ok bool) {
	switch name {
	case FieldID:
		return r.ID, true
	case FieldRegion:
		return deref(r.Region), true
	case FieldCountry:
		return deref(r.Country), true
	case FieldItemType:
		return deref(r.ItemType), true
	case FieldSalesChannel:
		return deref(r.SalesChannel), true
	case FieldOrderPriority:
		return deref(r.OrderPriority), true
	case FieldOrderID:
		return deref(r.OrderID), true
	case FieldShipDate:
		return deref(r.ShipDate), true
	case FieldUnitPrice:
		return deref(r.UnitPrice), true
	case FieldUnitCost:
		return deref(r.UnitCost), true
	case FieldTotalCost:
		return deref(r.TotalCost), true
	case FieldOrderDate:
		return deref(r.OrderDate), true
	case FieldUnitsSold:
		return r.UnitsSold, true
	case FieldTotalRevenue:
		return r.TotalRevenue, true
	case FieldTotalProfit:
		return r.TotalProfit, true
	}
	value, ok = r.Extra[name]
	return value, ok
}

func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
