package models

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Tên field số đo của tầng gold
const (
	MeasureTotalRevenue = "TotalRevenue"
	MeasureTotalProfit  = "TotalProfit"
	MeasureUnitsSold    = "UnitsSold"
)

// Tên các view tầng gold
const (
	ViewSalesByRegion   = "sales_by_region"
	ViewSalesByCategory = "sales_by_category"
	ViewTopPerformers   = "top_performers"
)

// ViewSpec mô tả một view tổng hợp: nhóm theo GroupField, cộng SourceField của silver,
// ghi tổng vào MeasureField. Limit > 0 thì chỉ giữ Limit nhóm có tổng lớn nhất.
type ViewSpec struct {
	Name         string
	GroupField   string
	SourceField  string
	MeasureField string
	Limit        int
}

// DefaultViews là 3 view tầng gold
func DefaultViews() []ViewSpec {
	return []ViewSpec{
		{Name: ViewSalesByRegion, GroupField: FieldRegion, SourceField: FieldTotalRevenue, MeasureField: MeasureTotalRevenue},
		{Name: ViewSalesByCategory, GroupField: FieldItemType, SourceField: FieldTotalProfit, MeasureField: MeasureTotalProfit},
		{Name: ViewTopPerformers, GroupField: FieldCountry, SourceField: FieldUnitsSold, MeasureField: MeasureUnitsSold, Limit: 10},
	}
}

// GoldAggregateRow là một dòng kết quả của view tổng hợp
type GoldAggregateRow struct {
	ID           string
	View         string
	GroupField   string
	GroupKey     *string // nil là nhóm không xác định
	MeasureField string
	Measure      interface{} // int64 nếu mọi giá trị nguồn là số nguyên, ngược lại float64
}

// MeasureValue trả về số đo dạng float64 để so sánh
func (r GoldAggregateRow) MeasureValue() float64 {
	switch v := r.Measure.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// ToDocument dựng document gold: _id, field nhóm và field số đo
func (r GoldAggregateRow) ToDocument() bson.D {
	var key interface{}
	if r.GroupKey != nil {
		key = *r.GroupKey
	}
	return bson.D{
		{Key: FieldID, Value: r.ID},
		{Key: r.GroupField, Value: key},
		{Key: r.MeasureField, Value: r.Measure},
	}
}
