package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/repairdesk/repairdesk-api/internal/dto"
	"github.com/repairdesk/repairdesk-api/internal/models"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
	"github.com/repairdesk/repairdesk-api/pkg/export"
)

// ExportFormat selects the export rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

type requestLister interface {
	ListAll(ctx context.Context, principal models.Principal, query dto.RepairRequestQuery) ([]models.RepairRequest, error)
}

// ExportService renders the repair-request ledger for admins. Rendering is
// synchronous: the ledger is small enough that no job queue is warranted.
type ExportService struct {
	requests requestLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(requests requestLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		requests: requests,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// RenderLedger exports every repair request in the chosen format; admin only
// (the authorization check is delegated to the request listing).
func (s *ExportService) RenderLedger(ctx context.Context, principal models.Principal, format ExportFormat) (*ExportResult, error) {
	requests, err := s.requests.ListAll(ctx, principal, dto.RepairRequestQuery{})
	if err != nil {
		return nil, err
	}

	table := ledgerTable(requests)

	switch ExportFormat(strings.ToLower(string(format))) {
	case ExportFormatCSV:
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "repair-requests.csv"}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(table, "Repair Request Ledger")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "repair-requests.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func ledgerTable(requests []models.RepairRequest) export.Table {
	table := export.Table{
		Headers: []string{"ID", "Requester", "Reporter", "Station", "Department", "Material", "Code", "Qty", "Priority", "Status"},
	}
	for _, r := range requests {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.RequesterUsername,
			r.ReporterName,
			r.Station,
			r.Department,
			r.MaterialName,
			r.MaterialCode,
			strconv.Itoa(r.Quantity),
			string(r.Priority),
			string(r.Status),
		})
	}
	return table
}
