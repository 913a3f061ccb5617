package medallionsvc

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/medallion/models"
)

func bronze(id, orderID string, units *int64) models.BronzeRecord {
	r := models.BronzeRecord{ID: id, UnitsSold: units}
	if orderID != "" {
		r.OrderID = strPtr(orderID)
	}
	return r
}

func TestDeduplicate_FirstOccurrenceWins(t *testing.T) {
	in := []models.BronzeRecord{
		bronze("b1", "A1", nil),
		bronze("b2", "A1", int64Ptr(7)),
		bronze("b3", "A2", int64Ptr(3)),
		bronze("b4", "", nil),
		bronze("b5", "", int64Ptr(1)),
	}
	out := Deduplicate(in)

	ids := make([]string, 0, len(out))
	for _, r := range out {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b1", "b3", "b4"}, ids)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []models.BronzeRecord{
		bronze("b1", "A1", nil),
		bronze("b2", "A2", nil),
		bronze("b3", "A1", nil),
		bronze("b4", "A3", nil),
		bronze("b5", "A2", nil),
	}
	once := Deduplicate(in)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 3)
}

func TestFillDefaults_Totality(t *testing.T) {
	cases := []models.BronzeRecord{
		{},
		{UnitsSold: int64Ptr(5)},
		{TotalRevenue: float64Ptr(10.5), TotalProfit: float64Ptr(-2)},
		{SalesFields: models.SalesFields{Region: strPtr("Asia"), UnitPrice: nil}},
	}
	for i, in := range cases {
		out := FillDefaults(in)
		if in.UnitsSold == nil {
			assert.Equal(t, int64(0), out.UnitsSold, "case %d", i)
		} else {
			assert.Equal(t, *in.UnitsSold, out.UnitsSold, "case %d", i)
		}
		if in.TotalRevenue == nil {
			assert.Equal(t, 0.0, out.TotalRevenue, "case %d", i)
		}
		if in.TotalProfit == nil {
			assert.Equal(t, 0.0, out.TotalProfit, "case %d", i)
		}
		// field ngoài danh sách mặc định giữ nguyên
		assert.Equal(t, in.SalesFields, out.SalesFields, "case %d", i)
	}
}

func TestNormalizeDate(t *testing.T) {
	want := time.Date(2014, 10, 18, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"10/18/2014", "2014-10-18", " 2014-10-18 ", "2014-10-18T00:00:00Z"} {
		got := NormalizeDate(strPtr(s))
		require.NotNil(t, got, s)
		assert.True(t, want.Equal(*got), "%s → %v", s, got)
		assert.Equal(t, time.UTC, got.Location(), s)
	}

	withZone := NormalizeDate(strPtr("2014-10-18T07:00:00+07:00"))
	require.NotNil(t, withZone)
	assert.True(t, want.Equal(*withZone))
	assert.Equal(t, time.UTC, withZone.Location())
}

func TestNormalizeDate_NeverPanics(t *testing.T) {
	inputs := []*string{
		nil,
		strPtr(""),
		strPtr("   "),
		strPtr("not a date"),
		strPtr("13/45/2014"),
		strPtr("2014-02-30"),
		strPtr("////"),
		strPtr("\x00\xff"),
		strPtr("99999999999999999999"),
		strPtr("T"),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			got := NormalizeDate(in)
			if got != nil {
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
	assert.Nil(t, NormalizeDate(strPtr("not a date")))
	assert.Nil(t, NormalizeDate(nil))
}

func TestCleanData_DuplicateOrderScenario(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	deps, _ := testDeps(t, store)
	require.NoError(t, store.CreateCollection(ctx, "bronze_sales"))

	bronzeDocs := []interface{}{
		bson.M{"_id": "b1", "Order ID": "A1", "Units Sold": nil, "Total Revenue": 10.0, "Order Date": "10/18/2014", "Region": "Asia"},
		bson.M{"_id": "b2", "Order ID": "A1", "Units Sold": int64(9), "Total Revenue": 99.0, "Order Date": "11/07/2011", "Region": "Europe"},
		bson.M{"_id": "b3", "Order ID": "A2", "Units Sold": int64(4), "Order Date": "garbage"},
	}
	require.NoError(t, store.Collection("bronze_sales").InsertMany(ctx, bronzeDocs))

	n, err := NewCleaner(deps, "bronze_sales", "silver_sales").CleanData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	silver := findAll(t, store, "silver_sales")
	require.Len(t, silver, 2)

	first := silver[0]
	assert.Equal(t, "A1", first["Order ID"])
	assert.Equal(t, "Asia", first["Region"])
	assert.Equal(t, int64(0), first["Units Sold"])
	assert.Equal(t, 10.0, first["Total Revenue"])
	assert.Equal(t, 0.0, first["Total Profit"])
	assert.Equal(t, primitive.NewDateTimeFromTime(time.Date(2014, 10, 18, 0, 0, 0, 0, time.UTC)), first["Order Date"])
	assert.NotEqual(t, "b1", first["_id"], "silver phải có _id mới")

	second := silver[1]
	assert.Equal(t, "A2", second["Order ID"])
	assert.Equal(t, int64(4), second["Units Sold"])
	assert.Equal(t, 0.0, second["Total Revenue"])
	assert.Nil(t, second["Order Date"])
	assert.Nil(t, second["Ship Date"])

	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.DuplicatesDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.InvalidDates))

	for _, doc := range silver {
		r, err := models.SilverFromDocument(doc)
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID)
	}
}

func TestCleanData_UndecodableBronzeIsFatal(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	deps, _ := testDeps(t, store)
	require.NoError(t, store.CreateCollection(ctx, "bronze_sales"))
	require.NoError(t, store.Collection("bronze_sales").InsertOne(ctx, bson.M{"_id": "b1", "Order ID": "A1", "Units Sold": true}))

	_, err := NewCleaner(deps, "bronze_sales", "silver_sales").CleanData(ctx)
	assert.ErrorIs(t, err, common.ErrDecode)
	assert.Equal(t, -1, store.Count("silver_sales"), "silver không được provision khi đọc bronze lỗi")
}

func TestCleanData_RawNumericTextCoercedToDefault(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	deps, hook := testDeps(t, store)
	require.NoError(t, store.CreateCollection(ctx, "bronze_sales"))
	require.NoError(t, store.Collection("bronze_sales").InsertOne(ctx,
		bson.M{"_id": "b1", "Order ID": "A1", "Units Sold": "abc", "Unit Price": "n/a", "Total Revenue": 9.5}))

	n, err := NewCleaner(deps, "bronze_sales", "silver_sales").CleanData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	silver := findAll(t, store, "silver_sales")
	require.Len(t, silver, 1)
	assert.Equal(t, int64(0), silver[0]["Units Sold"])
	assert.Equal(t, 9.5, silver[0]["Total Revenue"])
	assert.Nil(t, silver[0]["Unit Price"])

	coerced := map[interface{}]bool{}
	for _, e := range hook.AllEntries() {
		if e.Message == "Numeric text coerced to default" {
			coerced[e.Data["column"]] = true
		}
	}
	assert.Equal(t, map[interface{}]bool{"Units Sold": true, "Unit Price": true}, coerced)
}

func TestCleanData_InsertFailureKeepsEarlierRows(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	store.failAfter["silver_sales"] = 1
	deps, _ := testDeps(t, store)
	require.NoError(t, store.CreateCollection(ctx, "bronze_sales"))
	require.NoError(t, store.Collection("bronze_sales").InsertMany(ctx, []interface{}{
		bson.M{"_id": "b1", "Order ID": "A1"},
		bson.M{"_id": "b2", "Order ID": "A2"},
		bson.M{"_id": "b3", "Order ID": "A3"},
	}))

	n, err := NewCleaner(deps, "bronze_sales", "silver_sales").CleanData(ctx)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.Count("silver_sales"))
}
