package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func cells(values map[string]string) CellGetter {
	return func(column string) (string, bool) {
		v, ok := values[column]
		return v, ok
	}
}

func TestNewBronzeRecord_KeepsUnparseableNumericText(t *testing.T) {
	columns := []string{FieldOrderID, FieldUnitsSold, FieldTotalRevenue, FieldUnitCost}
	r, warnings := NewBronzeRecord("b1", 4, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), columns, cells(map[string]string{
		FieldOrderID:      "A2",
		FieldUnitsSold:    "abc",
		FieldTotalRevenue: "50",
		FieldUnitCost:     "1e400",
	}))

	require.Len(t, warnings, 2)
	assert.Nil(t, r.UnitsSold)
	assert.Equal(t, map[string]string{FieldUnitsSold: "abc", FieldUnitCost: "1e400"}, r.Invalid)

	data, err := bson.Marshal(r)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(data, &doc))
	assert.Equal(t, "abc", doc[FieldUnitsSold])
	assert.Equal(t, "1e400", doc[FieldUnitCost])
	assert.Equal(t, 50.0, doc[FieldTotalRevenue])
	assert.NotContains(t, doc, "Invalid")

	back, err := BronzeFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, r.Invalid, back.Invalid)
	assert.Nil(t, back.UnitsSold)
	assert.Equal(t, int64(4), back.SourceRow)
}

func TestBronzeRecord_MarshalWithoutInvalid(t *testing.T) {
	units := int64(8)
	data, err := bson.Marshal(BronzeRecord{ID: "b1", UnitsSold: &units})
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(data, &doc))
	assert.Equal(t, int64(8), doc[FieldUnitsSold])
	assert.Nil(t, doc[FieldTotalProfit])
}

func TestBronzeFromDocument_NonTextGarbageIsDecodeError(t *testing.T) {
	_, err := BronzeFromDocument(bson.M{FieldUnitsSold: bson.A{1, 2}})
	assert.Error(t, err)
}

func TestSilverRecord_Field(t *testing.T) {
	region := "Asia"
	r := SilverRecord{
		ID:          "s1",
		SalesFields: SalesFields{Region: &region},
		UnitsSold:   3,
		Extra:       map[string]interface{}{"Segment": "Retail"},
	}

	v, ok := r.Field(FieldRegion)
	assert.True(t, ok)
	assert.Equal(t, "Asia", v)

	v, ok = r.Field(FieldCountry)
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok = r.Field(FieldUnitsSold)
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	v, ok = r.Field("Segment")
	assert.True(t, ok)
	assert.Equal(t, "Retail", v)

	_, ok = r.Field("TotalRevenue")
	assert.False(t, ok)
}
