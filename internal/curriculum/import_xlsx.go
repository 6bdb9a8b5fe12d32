package curriculum

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXHeaders is the column layout expected on the first row of each sheet.
// Columns may appear in any order; unknown columns are ignored.
var XLSXHeaders = []string{
	"question", "optionA", "optionB", "optionC", "optionD", "answer",
	"reference", "answer_details", "subject", "subcategory", "subspecialty",
	"system", "topic", "subtopic", "keywords", "level", "case_id", "quiz_id", "reviewed",
}

// ParseBankXLSX reads every sheet of a workbook as one item per row.
func ParseBankXLSX(r io.Reader) (RawBank, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return RawBank{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var rb RawBank
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return RawBank{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		cols := make(map[string]int, len(rows[0]))
		for i, h := range rows[0] {
			cols[strings.ToLower(strings.TrimSpace(h))] = i
		}
		cell := func(row []string, name string) string {
			i, ok := cols[strings.ToLower(name)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		for _, row := range rows[1:] {
			raw := RawItem{
				Question:      cell(row, "question"),
				Answer:        cell(row, "answer"),
				Reference:     cell(row, "reference"),
				AnswerDetails: cell(row, "answer_details"),
				Subject:       cell(row, "subject"),
				Subcategory:   cell(row, "subcategory"),
				Subspecialty:  cell(row, "subspecialty"),
				System:        cell(row, "system"),
				Topic:         cell(row, "topic"),
				Subtopic:      cell(row, "subtopic"),
				Keywords:      cell(row, "keywords"),
				CaseID:        cell(row, "case_id"),
				QuizID:        cell(row, "quiz_id"),
			}
			if raw.Question == "" {
				continue
			}
			for _, col := range []string{"optionA", "optionB", "optionC", "optionD"} {
				raw.Options = append(raw.Options, cell(row, col))
			}
			if lvl := cell(row, "level"); lvl != "" {
				if n, err := strconv.Atoi(lvl); err == nil {
					raw.Level = n
				}
			}
			if rev := cell(row, "reviewed"); rev != "" {
				raw.Reviewed, _ = strconv.ParseBool(rev)
			}
			rb.Items = append(rb.Items, raw)
		}
	}
	return rb, nil
}

func loadXLSXBank(path string) (*RawBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rb, err := ParseBankXLSX(f)
	if err != nil {
		slog.Warn("skipping invalid bank workbook", "path", path, "error", err)
		return nil, nil
	}
	if len(rb.Items) == 0 {
		return nil, nil
	}
	return &rb, nil
}

// WriteXLSXTemplate writes a workbook with the XLSXHeaders row and one
// example item, ready to be filled in and imported.
func WriteXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, len(XLSXHeaders))
	for i, h := range XLSXHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	example := []any{
		"Which test is first-line for suspected MI?", "ECG", "CXR", "Echo", "CT", "ECG",
		"", "", "", "", "", "Cardiovascular", "Ischemia", "", "", 1, "", "", "true",
	}
	if err := f.SetSheetRow(sheet, "A2", &example); err != nil {
		return fmt.Errorf("writing example row: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
