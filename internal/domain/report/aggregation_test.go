package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []TransactionRecord {
	return []TransactionRecord{
		{ID: 1, ClientName: "Anna", ProductName: "A", Amount: decimal.RequireFromString("10.00")},
		{ID: 2, ClientName: "Jan", ProductName: "A", Amount: decimal.RequireFromString("20.00")},
		{ID: 3, ClientName: "Anna", ProductName: "B", Amount: decimal.RequireFromString("5.00")},
	}
}

func TestAggregateProductSales(t *testing.T) {
	sales := AggregateProductSales(sampleTransactions())

	require.Len(t, sales, 2)
	assert.Equal(t, "A", sales[0].ProductName)
	assert.Equal(t, 2, sales[0].Count)
	assert.Equal(t, "30.00", sales[0].Total.StringFixed(2))
	assert.Equal(t, "15.00", sales[0].Average.StringFixed(2))

	assert.Equal(t, "B", sales[1].ProductName)
	assert.Equal(t, 1, sales[1].Count)
	assert.Equal(t, "5.00", sales[1].Total.StringFixed(2))
	assert.Equal(t, "5.00", sales[1].Average.StringFixed(2))
}

func TestAggregateProductSales_Idempotent(t *testing.T) {
	input := sampleTransactions()
	first := AggregateProductSales(input)
	second := AggregateProductSales(input)
	assert.Equal(t, first, second)
}

func TestAggregateProductSales_SortedByName(t *testing.T) {
	input := []TransactionRecord{
		{ProductName: "Woda", Amount: decimal.NewFromInt(3)},
		{ProductName: "Baton", Amount: decimal.NewFromInt(7)},
		{ProductName: "Odżywka", Amount: decimal.NewFromInt(90)},
	}
	sales := AggregateProductSales(input)
	require.Len(t, sales, 3)
	assert.Equal(t, []string{"Baton", "Odżywka", "Woda"},
		[]string{sales[0].ProductName, sales[1].ProductName, sales[2].ProductName})
}

func TestAggregateProductSales_Empty(t *testing.T) {
	sales := AggregateProductSales(nil)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)
}

func TestSummarizeFinancial_TotalEqualsParts(t *testing.T) {
	transactions := []TransactionRecord{
		{Amount: decimal.RequireFromString("0.10")},
		{Amount: decimal.RequireFromString("0.20")},
		{Amount: decimal.RequireFromString("19.99")},
	}
	memberships := []MembershipRecord{
		{Amount: decimal.RequireFromString("99.99")},
		{Amount: decimal.RequireFromString("0.01")},
	}

	s := SummarizeFinancial(transactions, memberships)
	assert.Equal(t, "20.29", s.ProductRevenue.StringFixed(2))
	assert.Equal(t, "100.00", s.MembershipRevenue.StringFixed(2))
	assert.True(t, s.Total.Equal(s.ProductRevenue.Add(s.MembershipRevenue)))
	assert.Equal(t, "120.29", s.Total.StringFixed(2))
}

func TestSummarizeFinancial_Empty(t *testing.T) {
	s := SummarizeFinancial(nil, nil)
	assert.True(t, s.ProductRevenue.IsZero())
	assert.True(t, s.MembershipRevenue.IsZero())
	assert.True(t, s.Total.IsZero())
}

func TestSummarizeProducts(t *testing.T) {
	products := []ProductRecord{
		{ID: 1, Name: "A", UnitPrice: decimal.RequireFromString("2.50"), StockQuantity: 4},
		{ID: 2, Name: "B", UnitPrice: decimal.RequireFromString("10.00"), StockQuantity: 0},
		{ID: 3, Name: "C", UnitPrice: decimal.RequireFromString("1.25"), StockQuantity: 8},
	}

	s := SummarizeProducts(products, sampleTransactions())
	assert.Equal(t, "20.00", s.InventoryValue.StringFixed(2))
	assert.Equal(t, "35.00", s.PeriodSales.StringFixed(2))
	assert.Equal(t, 3, s.UnitsSold)
	assert.Equal(t, 2, s.DistinctProducts)
}

func TestSummarizeMemberships(t *testing.T) {
	memberships := []MembershipRecord{
		{ClientName: "Anna", Amount: decimal.NewFromInt(100)},
		{ClientName: "Anna", Amount: decimal.NewFromInt(100)},
		{ClientName: "Jan", Amount: decimal.NewFromInt(150)},
	}

	s := SummarizeMemberships(memberships)
	assert.Equal(t, 2, s.DistinctClients)
	assert.Equal(t, "350.00", s.Revenue.StringFixed(2))
}

func TestSummarizeTransactions(t *testing.T) {
	s := SummarizeTransactions(sampleTransactions())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.DistinctClients)
	assert.Equal(t, 2, s.DistinctProducts)
	assert.Equal(t, "35.00", s.Total.StringFixed(2))
}
