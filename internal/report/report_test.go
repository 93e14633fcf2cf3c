package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-screener/internal/screening"
)

func result(name string, rec screening.Recommendation) *screening.Result {
	return &screening.Result{
		ResumeID:        name + ".pdf",
		ApplicantName:   name,
		OverallScore:    7.5,
		SkillMatchScore: 8,
		Recommendation:  rec,
		MatchedKeywords: []string{"Go", "SQL"},
		MissingKeywords: []string{"Kafka"},
		Feedback:        []string{"Strong", "Needs Kafka"},
		ScreenedAt:      time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC),
		Method:          screening.MethodLLM,
	}
}

func names(results []*screening.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ApplicantName)
	}
	return out
}

func TestSortIsStableByRank(t *testing.T) {
	in := []*screening.Result{
		result("r1", screening.RecommendationReject),
		result("p1", screening.RecommendationPass),
		result("v1", screening.RecommendationReview),
		result("p2", screening.RecommendationPass),
	}

	sorted := Sort(in)

	assert.Equal(t, []string{"p1", "p2", "v1", "r1"}, names(sorted))
	assert.Equal(t, "r1", in[0].ApplicantName, "input must not be reordered")
}

func TestSortPutsUnknownLast(t *testing.T) {
	in := []*screening.Result{
		result("u", screening.Recommendation("MAYBE")),
		result("r", screening.RecommendationReject),
	}

	assert.Equal(t, []string{"r", "u"}, names(Sort(in)))
}

func TestRow(t *testing.T) {
	row := Row(result("Jane", screening.RecommendationPass))

	require.Len(t, row, len(Columns))
	assert.Equal(t, "Jane", row[0])
	assert.Equal(t, 7.5, row[1])
	assert.Equal(t, "PASS", row[5])
	assert.Equal(t, "Go, SQL", row[6])
	assert.Equal(t, "Kafka", row[7])
	assert.Equal(t, "2024-03-09 14:05:06", row[8])
	assert.Equal(t, "Strong; Needs Kafka", row[9])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	in := []*screening.Result{
		result("Zed", screening.RecommendationReject),
		result("Amy", screening.RecommendationPass),
	}

	require.NoError(t, WriteXLSX(path, in))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "Amy", rows[1][0])
	assert.Equal(t, "PASS", rows[1][5])
	assert.Equal(t, "Zed", rows[2][0])
}

func TestWriteXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, WriteXLSX(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestByRecommendation(t *testing.T) {
	fallback := result("Bo", screening.RecommendationReject)
	fallback.Method = screening.MethodHeuristic
	fallback.Fallback = true

	report := ByRecommendation([]*screening.Result{
		result("Al", screening.RecommendationPass),
		fallback,
	})

	require.Len(t, report["PASS"], 1)
	assert.Equal(t, "Al", report["PASS"][0]["applicant"])
	assert.Equal(t, "7.5", report["PASS"][0]["score"])
	assert.NotContains(t, report["PASS"][0], "method")
	assert.Equal(t, "heuristic", report["REJECT"][0]["method"])
}

func TestDumpToTmpFile(t *testing.T) {
	name, err := DumpToTmpFile([]*screening.Result{result("Al", screening.RecommendationPass)})
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Al", decoded[0]["applicant_name"])
	assert.Equal(t, "PASS", decoded[0]["recommendation"])
}
