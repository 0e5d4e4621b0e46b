package report

import (
	"regexp"
	"strings"
	"time"
)

// ReportType selects which document the pipeline builds
type ReportType string

const (
	ReportTypeFinancial    ReportType = "financial"
	ReportTypeProducts     ReportType = "products"
	ReportTypeMemberships  ReportType = "memberships"
	ReportTypeTransactions ReportType = "transactions"
)

// AllProducts is the dimension filter value meaning "no product filter"
const AllProducts = "Wszystkie"

var whitespace = regexp.MustCompile(`\s+`)

// AllReportTypes returns every report type in display order
func AllReportTypes() []ReportType {
	return []ReportType{
		ReportTypeFinancial,
		ReportTypeProducts,
		ReportTypeMemberships,
		ReportTypeTransactions,
	}
}

// IsValid reports whether t is a known report type
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeFinancial, ReportTypeProducts, ReportTypeMemberships, ReportTypeTransactions:
		return true
	}
	return false
}

func (t ReportType) String() string {
	return string(t)
}

// Title returns the document title. The products title names the product
// when a filter is applied.
func (t ReportType) Title(productFilter string) string {
	switch t {
	case ReportTypeFinancial:
		return "Raport Finansowy"
	case ReportTypeProducts:
		if IsProductFiltered(productFilter) {
			return "Raport Produktów - " + productFilter
		}
		return "Raport Produktów"
	case ReportTypeMemberships:
		return "Raport Karnetów"
	case ReportTypeTransactions:
		return "Raport Transakcji"
	}
	return ""
}

// SuggestedFileName returns the default file name for a report generated on day
func (t ReportType) SuggestedFileName(productFilter string, day time.Time) string {
	date := day.Format(isoDateLayout)
	switch t {
	case ReportTypeFinancial:
		return "raport_finansowy_" + date + ".pdf"
	case ReportTypeProducts:
		if IsProductFiltered(productFilter) {
			return "raport_produktow_" + whitespace.ReplaceAllString(strings.TrimSpace(productFilter), "_") + "_" + date + ".pdf"
		}
		return "raport_produktow_" + date + ".pdf"
	case ReportTypeMemberships:
		return "raport_karnetow_" + date + ".pdf"
	case ReportTypeTransactions:
		return "raport_transakcji_" + date + ".pdf"
	}
	return "raport_" + date + ".pdf"
}

// IsProductFiltered reports whether filter narrows the data to one product
func IsProductFiltered(filter string) bool {
	filter = strings.TrimSpace(filter)
	return filter != "" && filter != AllProducts
}
