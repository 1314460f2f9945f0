package app

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/formulamap/internal/formula"
	"github.com/vk/formulamap/internal/sheet"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// reportLines returns the report rows with runs of spaces collapsed.
func reportLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		lines = append(lines, strings.Join(strings.Fields(line), " "))
	}
	return lines
}

func TestRun_AppliesSheetsAssignmentsAndRemovals(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", "D = B + C\nC = A + 1\nB = A + 3\n")
	writeFile(t, dir, "b.toml", "A = 2\nE = \"missing_var * 2\"\n")

	testApp, out, logs := SetupAppTest(t, &Config{
		SheetPaths:  []string{dir},
		Assignments: []Assignment{{Name: "A", Expression: "10"}, {Name: "F", Expression: "F + 1"}},
		Removals:    []string{"E"},
	})

	require.NoError(t, testApp.Run(context.Background()))

	assert.Equal(t, []string{
		"NAME STATE VALUE",
		"A OK 10",
		"B OK 13",
		"C OK 11",
		"D OK 24",
		"F CYCLE F->F",
	}, reportLines(out.String()))
	assert.Contains(t, logs.String(), "Sheets applied.")
	assert.Equal(t, 5, testApp.Formulas().Size())
}

func TestRun_ReportsErrors(t *testing.T) {
	testApp, out, _ := SetupAppTest(t, &Config{
		Assignments: []Assignment{
			{Name: "B", Expression: "A + C"},
			{Name: "Z", Expression: "pow(2"},
		},
	})

	require.NoError(t, testApp.Run(context.Background()))

	lines := reportLines(out.String())
	require.Len(t, lines, 5)
	assert.Equal(t, "A ERROR missing", lines[1])
	assert.Equal(t, "B ERROR missing: A, C", lines[2])
	assert.Equal(t, "C ERROR missing", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "Z ERROR invalid expression"), lines[4])
}

func TestRun_InvalidSheet(t *testing.T) {
	p := writeFile(t, t.TempDir(), "bad.hcl", "block {}\n")
	testApp, out, _ := SetupAppTest(t, &Config{SheetPaths: []string{p}})

	err := testApp.Run(context.Background())
	require.ErrorIs(t, err, sheet.ErrInvalidSheet)
	assert.Contains(t, err.Error(), "failed to load sheets")
	assert.Empty(t, out.String())
}

func TestWriteReport(t *testing.T) {
	m := formula.New(fixedEvaluator{})
	m.Put("x", "0.5")

	var out SafeBuffer
	require.NoError(t, writeReport(&out, m.Snapshot()))
	assert.Equal(t, []string{"NAME STATE VALUE", "x OK 0.5"}, reportLines(out.String()))
}

// fixedEvaluator evaluates every expression to its numeric literal.
type fixedEvaluator struct{}

func (fixedEvaluator) Dependencies(string) ([]string, error) { return nil, nil }

func (fixedEvaluator) Evaluate(expression string, _ map[string]float64) (float64, error) {
	return strconv.ParseFloat(expression, 64)
}
