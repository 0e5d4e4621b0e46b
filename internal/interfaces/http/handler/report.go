package handler

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reportapp "github.com/gym/backend/internal/application/report"
	"github.com/gym/backend/internal/domain/report"
	"github.com/gym/backend/internal/infrastructure/logger"
	"github.com/gym/backend/internal/infrastructure/printing"
	"github.com/gym/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const (
	dateLayout     = "2006-01-02"
	pdfContentType = "application/pdf"
	filesPath      = "/api/v1/reports/files/"
)

// GenerateReportRequest asks for one report. Either a preset period or both
// custom dates may be sent; the dates win when present.
// @name HandlerGenerateReportRequest
type GenerateReportRequest struct {
	Type      string `json:"type" binding:"required,report_type" example:"financial"`
	Period    string `json:"period" binding:"omitempty,max=64" example:"last-month"`
	StartDate string `json:"start_date" binding:"omitempty,datetime=2006-01-02" example:"2024-01-01"`
	EndDate   string `json:"end_date" binding:"omitempty,datetime=2006-01-02" example:"2024-01-31"`
	Product   string `json:"product" binding:"omitempty,max=200" example:"Wszystkie"`
	Archive   bool   `json:"archive"`
}

// GenerateReportResponse describes a generated report and where to fetch it
// @name HandlerGenerateReportResponse
type GenerateReportResponse struct {
	*reportapp.GenerateResult
	DownloadPath string `json:"download_path" example:"/api/v1/reports/files/raport_finansowy_2024-01-31_1a2b3c4d.pdf"`
}

// ReportHandler serves report generation and downloads
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	outputs       *printing.OutputStore
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *reportapp.ReportService, outputs *printing.OutputStore) *ReportHandler {
	return &ReportHandler{reportService: reportService, outputs: outputs}
}

// ListReportTypes godoc
// @ID           listReportTypes
// @Summary      List report types
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]reportapp.ReportTypeOption]
// @Failure      401 {object} ErrorResponse
// @Router       /reports/types [get]
func (h *ReportHandler) ListReportTypes(c *gin.Context) {
	h.Success(c, h.reportService.ReportTypes())
}

// ListPeriods godoc
// @ID           listReportPeriods
// @Summary      List period presets
// @Description  Period presets with the date range each one resolves to today
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]reportapp.PeriodOption]
// @Failure      401 {object} ErrorResponse
// @Router       /reports/periods [get]
func (h *ReportHandler) ListPeriods(c *gin.Context) {
	h.Success(c, h.reportService.PeriodOptions())
}

// ListProducts godoc
// @ID           listReportProducts
// @Summary      List product filter options
// @Description  "Wszystkie" followed by every product name. A storage failure yields only "Wszystkie".
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]string]
// @Failure      401 {object} ErrorResponse
// @Router       /reports/products [get]
func (h *ReportHandler) ListProducts(c *gin.Context) {
	names, err := h.reportService.ProductNames(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("Product filter options degraded", zap.Error(err))
	}
	h.Success(c, names)
}

// InvalidateProducts godoc
// @ID           invalidateReportProducts
// @Summary      Drop cached product names
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} SuccessResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/products/cache [delete]
func (h *ReportHandler) InvalidateProducts(c *gin.Context) {
	if err := h.reportService.InvalidateProductNames(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

// Generate godoc
// @ID           generateReport
// @Summary      Generate a report
// @Description  Renders a PDF report for the period. Sections whose data could not be loaded render empty and are listed under warnings.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GenerateReportRequest true "Report request"
// @Success      201 {object} APIResponse[GenerateReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	period, err := requestedPeriod(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	reportType := report.ReportType(req.Type)
	fileName := uniqueFileName(h.reportService.SuggestedFileName(reportType, req.Product))
	outputPath, err := h.outputs.PathFor(fileName)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.reportService.Generate(c.Request.Context(), reportapp.GenerateRequest{
		Type:          reportType,
		Period:        period,
		OutputPath:    outputPath,
		Requester:     middleware.GetJWTEmail(c),
		ProductFilter: req.Product,
		Archive:       req.Archive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, GenerateReportResponse{
		GenerateResult: result,
		DownloadPath:   filesPath + result.FileName,
	})
}

// Download godoc
// @ID           downloadReport
// @Summary      Download a generated report
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        name path string true "Report file name"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reports/files/{name} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	name := c.Param("name")
	if _, err := h.outputs.PathFor(name); err != nil {
		h.BadRequest(c, "Invalid report name")
		return
	}

	file, size, err := h.outputs.Open(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.NotFound(c, "Report not found")
			return
		}
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	c.DataFromReader(http.StatusOK, size, pdfContentType, file, map[string]string{
		"Content-Disposition": disposition,
	})
}

// requestedPeriod returns the period token for the request. Custom dates
// must come in pairs.
func requestedPeriod(req GenerateReportRequest) (string, error) {
	if req.StartDate == "" && req.EndDate == "" {
		return req.Period, nil
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return "", err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return "", err
	}
	return report.CustomPeriodToken(start, end)
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, report.NewValidationError(report.ErrCodeInvalidRange, "Nieprawidłowy format daty", err)
	}
	return &t, nil
}

// uniqueFileName keeps concurrent runs of the same report from overwriting
// each other and strips path separators a product name may contain
func uniqueFileName(suggested string) string {
	base := strings.TrimSuffix(suggested, ".pdf")
	base = strings.NewReplacer("/", "_", `\`, "_").Replace(base)
	return base + "_" + uuid.NewString()[:8] + ".pdf"
}
