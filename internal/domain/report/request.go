package report

import "strings"

// Request is the input contract of one report run
type Request struct {
	Type ReportType
	// Period is a preset label, an alias, or "YYYY-MM-DD:YYYY-MM-DD"
	Period string
	// OutputPath is where the finished document is written
	OutputPath string
	// Requester is shown on the document only
	Requester string
	// ProductFilter narrows a products report to one product; AllProducts or empty means no filter
	ProductFilter string
}

// Validate checks the request before anything is fetched
func (r *Request) Validate() error {
	if !r.Type.IsValid() {
		return NewValidationError(ErrCodeInvalidType, "unknown report type: "+string(r.Type), nil)
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		return NewValidationError(ErrCodeMissingOutput, "output path is required", nil)
	}
	if strings.TrimSpace(r.Requester) == "" {
		return NewValidationError(ErrCodeMissingRequester, "requester identity is required", nil)
	}
	if IsProductFiltered(r.ProductFilter) && r.Type != ReportTypeProducts {
		return NewValidationError(ErrCodeUnsupportedFilter,
			"product filter is only supported by the products report", nil)
	}
	return nil
}

// EffectiveProductFilter returns the product name to filter by, or "" for none
func (r *Request) EffectiveProductFilter() string {
	if IsProductFiltered(r.ProductFilter) {
		return strings.TrimSpace(r.ProductFilter)
	}
	return ""
}
