package pdf

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateScoreReport(t *testing.T) {
	dir := t.TempDir()
	g := NewDocumentGenerator(dir, "")

	rows := make([][]string, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, []string{"01/06/2024", "07/06/2024", "Asha " + strconv.Itoa(i), "10", "8", "-20%", "-10%", "2"})
	}
	path, err := g.GenerateScoreReport(ScoreReport{
		GeneratedAt: time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC),
		Viewer:      "admin",
		Headers:     []string{"Start", "End", "Name", "Target", "Achievement", "Not done", "Not on time", "Pending"},
		Rows:        rows,
	})
	require.NoError(t, err)
	assert.Contains(t, path, "score_20240610_093000.pdf")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(b) > 100)
	assert.Equal(t, "%PDF", string(b[:4]))
}

func TestGenerateDashboardReport(t *testing.T) {
	dir := t.TempDir()
	g := NewDocumentGenerator(dir, "")

	path, err := g.GenerateDashboardReport(DashboardReport{
		Mode:        "checklist",
		GeneratedAt: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Summary:     []KV{{"Total", "4"}, {"Completion rate", "25.0%"}},
		StaffHeader: []string{"Name", "Project", "Total", "Progress"},
		Staff:       [][]string{{"Ravi", "Alpha", "3", "33%"}},
		Filename:    "../escape.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
