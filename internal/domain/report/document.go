package report

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed document texts
const (
	OrganizationName = "SIŁOWNIA FITNESS CENTRUM"
	FooterText       = "Siłownia Fitness Centrum - System Zarządzania"
	SummaryHeading   = "PODSUMOWANIE"
	CurrencySuffix   = "PLN"

	// GeneratedAtLayout renders the generation timestamp (dd.MM.yyyy HH:mm)
	GeneratedAtLayout = "02.01.2006 15:04"
)

// OrganizationAddress is printed under the organization name, one entry per line
var OrganizationAddress = []string{
	"ul. Sportowa 123, 35-340 Rzeszów",
	"Tel: 17 123 45 67",
	"NIP: 123-456-78-90",
}

// Alignment of a table column
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Column is one table column header
type Column struct {
	Title string
	Align Alignment
}

// Table is a titled data table; Rows hold already formatted cell texts
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// SummaryRow is one label/value line of the summary block
type SummaryRow struct {
	Label string
	Value string
	Bold  bool
}

// Document is the layout model handed to the renderer
type Document struct {
	Organization      string
	Address           []string
	Title             string
	Requester         string
	PeriodDescription string
	GeneratedAt       time.Time
	Tables            []Table
	SummaryHeading    string
	Summary           []SummaryRow
	Footer            string
}

// GeneratedAtText returns the formatted generation timestamp
func (d *Document) GeneratedAtText() string {
	return d.GeneratedAt.Format(GeneratedAtLayout)
}

// RowCount returns the number of data rows across all tables
func (d *Document) RowCount() int {
	n := 0
	for _, t := range d.Tables {
		n += len(t.Rows)
	}
	return n
}

// FormatAmount formats a decimal with exactly two fraction digits
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatMoney formats a decimal amount with the currency suffix
func FormatMoney(d decimal.Decimal) string {
	return FormatAmount(d) + " " + CurrencySuffix
}

// DocumentInput carries everything BuildDocument needs besides the data
type DocumentInput struct {
	Type              ReportType
	ProductFilter     string
	Requester         string
	PeriodDescription string
	GeneratedAt       time.Time
}

// BuildDocument lays out the sections of the requested report type from
// the fetched dataset. The dataset may be empty; tables then have no rows
// and the summary shows zeros.
func BuildDocument(in DocumentInput, data *Dataset) *Document {
	if data == nil {
		data = NewDataset()
	}
	doc := &Document{
		Organization:      OrganizationName,
		Address:           OrganizationAddress,
		Title:             in.Type.Title(in.ProductFilter),
		Requester:         in.Requester,
		PeriodDescription: in.PeriodDescription,
		GeneratedAt:       in.GeneratedAt,
		SummaryHeading:    SummaryHeading,
		Footer:            FooterText,
	}

	switch in.Type {
	case ReportTypeFinancial:
		doc.Tables = []Table{
			transactionsTable("Sprzedaż Produktów", data.Transactions),
			membershipsTable("Płatności za Karnety", data.Memberships),
		}
		s := SummarizeFinancial(data.Transactions, data.Memberships)
		doc.Summary = []SummaryRow{
			{Label: "Przychody ze sprzedaży produktów:", Value: FormatMoney(s.ProductRevenue)},
			{Label: "Przychody z karnetów:", Value: FormatMoney(s.MembershipRevenue)},
			{Label: "SUMA PRZYCHODÓW:", Value: FormatMoney(s.Total), Bold: true},
		}
	case ReportTypeProducts:
		doc.Tables = []Table{
			inventoryTable(data.Products),
			productSalesTable(AggregateProductSales(data.Transactions)),
		}
		s := SummarizeProducts(data.AllProducts, data.Transactions)
		doc.Summary = []SummaryRow{
			{Label: "Wartość stanu magazynowego:", Value: FormatMoney(s.InventoryValue)},
			{Label: "Sprzedaż w wybranym okresie:", Value: FormatMoney(s.PeriodSales)},
			{Label: "Łączna ilość sprzedanych produktów:", Value: strconv.Itoa(s.UnitsSold)},
			{Label: "Liczba różnych produktów sprzedanych:", Value: strconv.Itoa(s.DistinctProducts)},
		}
	case ReportTypeMemberships:
		doc.Tables = []Table{
			membershipsTable("Szczegółowe informacje o płatnościach za karnety", data.Memberships),
		}
		s := SummarizeMemberships(data.Memberships)
		doc.Summary = []SummaryRow{
			{Label: "Liczba klientów z karnetami:", Value: strconv.Itoa(s.DistinctClients)},
			{Label: "Przychody z karnetów:", Value: FormatMoney(s.Revenue)},
		}
	case ReportTypeTransactions:
		doc.Tables = []Table{
			transactionsTable("Szczegółowe informacje o transakcjach", data.Transactions),
		}
		s := SummarizeTransactions(data.Transactions)
		doc.Summary = []SummaryRow{
			{Label: "Liczba transakcji:", Value: strconv.Itoa(s.Count)},
			{Label: "Liczba klientów:", Value: strconv.Itoa(s.DistinctClients)},
			{Label: "Liczba różnych produktów:", Value: strconv.Itoa(s.DistinctProducts)},
			{Label: "Suma transakcji:", Value: FormatMoney(s.Total), Bold: true},
		}
	}
	return doc
}

func transactionsTable(title string, records []TransactionRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.FormattedDate(),
			r.ClientName,
			r.ProductName,
			FormatAmount(r.Amount),
		})
	}
	return Table{
		Title: title,
		Columns: []Column{
			{Title: "ID", Align: AlignLeft},
			{Title: "Data", Align: AlignLeft},
			{Title: "Klient", Align: AlignLeft},
			{Title: "Produkt", Align: AlignLeft},
			{Title: "Kwota (PLN)", Align: AlignRight},
		},
		Rows: rows,
	}
}

func membershipsTable(title string, records []MembershipRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.FormattedDate(),
			r.ClientName,
			FormatAmount(r.Amount),
		})
	}
	return Table{
		Title: title,
		Columns: []Column{
			{Title: "ID", Align: AlignLeft},
			{Title: "Data", Align: AlignLeft},
			{Title: "Klient", Align: AlignLeft},
			{Title: "Kwota (PLN)", Align: AlignRight},
		},
		Rows: rows,
	}
}

func inventoryTable(products []ProductRecord) Table {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			strconv.Itoa(p.StockQuantity),
			FormatAmount(p.UnitPrice),
		})
	}
	return Table{
		Title: "Stan Magazynowy Produktów",
		Columns: []Column{
			{Title: "ID", Align: AlignLeft},
			{Title: "Nazwa Produktu", Align: AlignLeft},
			{Title: "Ilość", Align: AlignCenter},
			{Title: "Cena (PLN)", Align: AlignRight},
		},
		Rows: rows,
	}
}

func productSalesTable(sales []ProductSales) Table {
	rows := make([][]string, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []string{
			s.ProductName,
			strconv.Itoa(s.Count),
			FormatAmount(s.Total),
			FormatAmount(s.Average),
		})
	}
	return Table{
		Title: "Sprzedaż Produktów w Wybranym Okresie",
		Columns: []Column{
			{Title: "Produkt", Align: AlignLeft},
			{Title: "Ilość sprzedana", Align: AlignCenter},
			{Title: "Łączna kwota (PLN)", Align: AlignRight},
			{Title: "Średnia cena", Align: AlignRight},
		},
		Rows: rows,
	}
}
