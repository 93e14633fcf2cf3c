// Package report turns screening results into exports: a sorted single-sheet
// workbook, a grouping by recommendation and a raw JSON dump.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-screener/internal/screening"
)

const (
	// DefaultPath is where the screen command writes the workbook.
	DefaultPath = "screening_results.xlsx"
	// SheetName is the only sheet in the workbook.
	SheetName = "Screening Results"

	timeLayout = "2006-01-02 15:04:05"
)

// Columns are the workbook headers in row order.
var Columns = []string{
	"Applicant",
	"Overall Score",
	"Skill Score",
	"Experience Score",
	"Education Score",
	"Recommendation",
	"Matched Keywords",
	"Missing Keywords",
	"Screened At",
	"Feedback",
}

// Sort returns results ordered PASS, REVIEW, REJECT, then anything else.
// Equal recommendations keep their input order. The input is not modified.
func Sort(results []*screening.Result) []*screening.Result {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b *screening.Result) int {
		return a.Recommendation.Rank() - b.Recommendation.Rank()
	})
	return sorted
}

// Row renders one result in column order.
func Row(r *screening.Result) []any {
	return []any{
		r.ApplicantName,
		r.OverallScore,
		r.SkillMatchScore,
		r.ExperienceMatchScore,
		r.EducationMatchScore,
		string(r.Recommendation),
		strings.Join(r.MatchedKeywords, ", "),
		strings.Join(r.MissingKeywords, ", "),
		r.ScreenedAt.Format(timeLayout),
		strings.Join(r.Feedback, "; "),
	}
}

// Workbook builds the sorted results sheet. The caller closes the file.
func Workbook(results []*screening.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(Columns))
	for _, c := range Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, r := range Sort(results) {
		row := Row(r)
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// WriteXLSX writes the sorted results workbook to path.
func WriteXLSX(path string, results []*screening.Result) error {
	f, err := Workbook(results)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ByRecommendation groups results for a quick console report.
func ByRecommendation(results []*screening.Result) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, r := range Sort(results) {
		key := string(r.Recommendation)
		entry := map[string]string{
			"applicant": r.ApplicantName,
			"resume_id": r.ResumeID,
			"score":     strconv.FormatFloat(r.OverallScore, 'f', 1, 64),
		}
		if r.Fallback {
			entry["method"] = string(r.Method)
		}
		if len(r.MissingKeywords) > 0 {
			entry["missing"] = strings.Join(r.MissingKeywords, ", ")
		}
		report[key] = append(report[key], entry)
	}
	return report
}

// WriteJSON encodes the sorted results as indented JSON.
func WriteJSON(w io.Writer, results []*screening.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Sort(results))
}

// DumpToTmpFile writes the sorted results to a new temporary JSON file and
// returns its name.
func DumpToTmpFile(results []*screening.Result) (string, error) {
	file, err := os.CreateTemp("", "screening_results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, results); err != nil {
		return "", err
	}
	return file.Name(), nil
}
