package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/magnetlab/signal-pipeline/app/dto"
)

// ExportService renders workspace data into downloadable files
type ExportService interface {
	LeadsWorkbook(leads []dto.LeadDTO) (*bytes.Buffer, error)
}

// ExportServiceImpl implements ExportService
type ExportServiceImpl struct{}

func NewExportService() ExportService {
	return &ExportServiceImpl{}
}

var leadExportHeaders = []string{
	"Full Name", "Job Title", "Company", "Location", "Profile URL",
	"ICP Score", "ICP Matched", "First Seen", "Last Seen", "Pushed To Outbound",
}

// LeadsWorkbook builds an xlsx workbook with one lead per row
func (s *ExportServiceImpl) LeadsWorkbook(leads []dto.LeadDTO) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leads"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	for col, header := range leadExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(leadExportHeaders), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	for row, lead := range leads {
		values := []any{
			lead.FullName,
			lead.JobTitle,
			lead.Company,
			lead.Location,
			lead.ProfileURL,
			lead.ICPScore,
			lead.ICPMatched,
			lead.FirstSeenAt.Format(time.RFC3339),
			lead.LastSeenAt.Format(time.RFC3339),
			lead.PushedToOutbound,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "E", 30); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
