// Package export renders analytics results into an xlsx workbook for
// download. One sheet per report section.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/example/flashlytics/pkg/models"
)

const (
	sheetDailySummary = "Daily Summary"
	sheetStruggling   = "Struggling Cards"
	sheetHardest      = "Hardest Cards"
)

// BuildWorkbook assembles the learning report workbook. The caller owns
// closing or writing the returned file. A nil hardest slice still produces
// the sheet with only its header row.
func BuildWorkbook(summary *models.DailySummary, struggling []models.StruggleScore, hardest []models.HardestCard) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeDailySummary(f, summary); err != nil {
		return nil, err
	}
	if err := writeStruggling(f, struggling); err != nil {
		return nil, err
	}
	if err := writeHardest(f, hardest); err != nil {
		return nil, err
	}

	// Drop the default sheet excelize creates.
	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeDailySummary(f *excelize.File, summary *models.DailySummary) error {
	f.NewSheet(sheetDailySummary)
	header := []any{"Date", "Reviews", "Correct", "Incorrect", "Study Time (min)"}
	if err := f.SetSheetRow(sheetDailySummary, "A1", &header); err != nil {
		return err
	}
	for i, day := range summary.Days {
		row := []any{
			day.Date.Format("2006-01-02"),
			day.Reviews,
			day.Correct,
			day.Incorrect,
			float64(day.StudyTimeMs) / 60000,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetDailySummary, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeStruggling(f *excelize.File, struggling []models.StruggleScore) error {
	f.NewSheet(sheetStruggling)
	header := []any{"Card ID", "Deck ID", "Score", "Error Rate", "Lapses", "Reviews", "Last Reviewed"}
	if err := f.SetSheetRow(sheetStruggling, "A1", &header); err != nil {
		return err
	}
	for i, s := range struggling {
		row := []any{
			s.CardID,
			s.DeckID,
			s.Score,
			s.ErrorRate,
			s.LapseCount,
			s.ReviewCount,
			s.LastReviewedAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetStruggling, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeHardest(f *excelize.File, hardest []models.HardestCard) error {
	f.NewSheet(sheetHardest)
	header := []any{"Card ID", "Score", "Lapse Rate", "Mean Response (ms)", "Reviews"}
	if err := f.SetSheetRow(sheetHardest, "A1", &header); err != nil {
		return err
	}
	for i, h := range hardest {
		row := []any{
			h.CardID,
			h.Score,
			h.LapseRate,
			h.MeanResponseMs,
			h.ReviewCount,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetHardest, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
