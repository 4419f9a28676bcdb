package service

import (
	"context"
	"fmt"
	"time"

	"bloodlink-data/internal/domain"
	"bloodlink-data/internal/repository"

	"github.com/xuri/excelize/v2"
)

// ExportReport renders a report as a single-sheet xlsx workbook: title row,
// header row, data rows, then the summary pairs.
func (s *adminService) ExportReport(ctx context.Context, actor *domain.User, kind ReportKind, dr repository.DateRange) ([]byte, string, error) {
	report, err := s.Report(ctx, actor, kind, dr)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	if err := f.SetCellValue(sheet, "A1", report.Title); err != nil {
		return nil, "", fmt.Errorf("failed to write title: %w", err)
	}
	for col, name := range report.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}
	for rowIdx, row := range report.Rows {
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+3)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	summaryRow := len(report.Rows) + 4
	for key, val := range report.Summary {
		keyCell, err := excelize.CoordinatesToCellName(1, summaryRow)
		if err != nil {
			return nil, "", err
		}
		valCell, err := excelize.CoordinatesToCellName(2, summaryRow)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, keyCell, key); err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, valCell, val); err != nil {
			return nil, "", err
		}
		summaryRow++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}
	filename := fmt.Sprintf("%s-report-%s.xlsx", kind, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
