package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ProductSales is the per-product aggregate of sales in a period
type ProductSales struct {
	ProductName string          `json:"product_name"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Average     decimal.Decimal `json:"average"`
}

// AggregateProductSales groups transactions by product name and computes
// count, sum and average per group. The result is sorted by product name.
func AggregateProductSales(transactions []TransactionRecord) []ProductSales {
	index := make(map[string]int)
	result := make([]ProductSales, 0)
	for _, t := range transactions {
		i, ok := index[t.ProductName]
		if !ok {
			i = len(result)
			index[t.ProductName] = i
			result = append(result, ProductSales{ProductName: t.ProductName, Total: decimal.Zero})
		}
		result[i].Count++
		result[i].Total = result[i].Total.Add(t.Amount)
	}
	for i := range result {
		result[i].Average = result[i].Total.Div(decimal.NewFromInt(int64(result[i].Count)))
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].ProductName < result[b].ProductName
	})
	return result
}

// SumTransactions returns the total amount of the given sales
func SumTransactions(transactions []TransactionRecord) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		total = total.Add(t.Amount)
	}
	return total
}

// SumMemberships returns the total amount of the given payments
func SumMemberships(memberships []MembershipRecord) decimal.Decimal {
	total := decimal.Zero
	for _, m := range memberships {
		total = total.Add(m.Amount)
	}
	return total
}

// FinancialSummary is the summary block of the financial report
type FinancialSummary struct {
	ProductRevenue    decimal.Decimal `json:"product_revenue"`
	MembershipRevenue decimal.Decimal `json:"membership_revenue"`
	Total             decimal.Decimal `json:"total"`
}

// SummarizeFinancial computes product and membership revenue and their sum
func SummarizeFinancial(transactions []TransactionRecord, memberships []MembershipRecord) FinancialSummary {
	products := SumTransactions(transactions)
	payments := SumMemberships(memberships)
	return FinancialSummary{
		ProductRevenue:    products,
		MembershipRevenue: payments,
		Total:             products.Add(payments),
	}
}

// ProductsSummary is the summary block of the products report
type ProductsSummary struct {
	InventoryValue   decimal.Decimal `json:"inventory_value"`
	PeriodSales      decimal.Decimal `json:"period_sales"`
	UnitsSold        int             `json:"units_sold"`
	DistinctProducts int             `json:"distinct_products"`
}

// SummarizeProducts computes inventory value over products and sales figures
// over transactions. Every transaction counts as one unit sold.
func SummarizeProducts(products []ProductRecord, transactions []TransactionRecord) ProductsSummary {
	value := decimal.Zero
	for _, p := range products {
		value = value.Add(p.StockValue())
	}
	return ProductsSummary{
		InventoryValue:   value,
		PeriodSales:      SumTransactions(transactions),
		UnitsSold:        len(transactions),
		DistinctProducts: len(AggregateProductSales(transactions)),
	}
}

// MembershipsSummary is the summary block of the memberships report
type MembershipsSummary struct {
	DistinctClients int             `json:"distinct_clients"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// SummarizeMemberships counts paying clients and totals their payments
func SummarizeMemberships(memberships []MembershipRecord) MembershipsSummary {
	clients := make(map[string]struct{})
	for _, m := range memberships {
		clients[m.ClientName] = struct{}{}
	}
	return MembershipsSummary{
		DistinctClients: len(clients),
		Revenue:         SumMemberships(memberships),
	}
}

// TransactionsSummary is the summary block of the transactions report
type TransactionsSummary struct {
	Count            int             `json:"count"`
	DistinctClients  int             `json:"distinct_clients"`
	DistinctProducts int             `json:"distinct_products"`
	Total            decimal.Decimal `json:"total"`
}

// SummarizeTransactions counts sales, buyers and products and totals the amounts
func SummarizeTransactions(transactions []TransactionRecord) TransactionsSummary {
	clients := make(map[string]struct{})
	products := make(map[string]struct{})
	for _, t := range transactions {
		clients[t.ClientName] = struct{}{}
		products[t.ProductName] = struct{}{}
	}
	return TransactionsSummary{
		Count:            len(transactions),
		DistinctClients:  len(clients),
		DistinctProducts: len(products),
		Total:            SumTransactions(transactions),
	}
}
