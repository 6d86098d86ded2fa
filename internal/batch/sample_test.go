package batch

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput(rows int) string {
	var b strings.Builder
	b.WriteString("Item (EN),Description (EN),Category/Department (EN)\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "item %d,desc %d,cat\n", i, i)
	}
	return b.String()
}

func TestSampleRows(t *testing.T) {
	var out bytes.Buffer
	n, err := SampleRows(strings.NewReader(sampleInput(50)), &out, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.Equal(t, []string{"Item (EN)", "Description (EN)", "Category/Department (EN)"}, rows[0])

	// Sampled rows keep their original relative order.
	last := -1
	for _, row := range rows[1:] {
		var i int
		_, err := fmt.Sscanf(row[0], "item %d", &i)
		require.NoError(t, err)
		assert.Greater(t, i, last)
		last = i
	}
}

func TestSampleRows_FewerRowsThanSample(t *testing.T) {
	var out bytes.Buffer
	n, err := SampleRows(strings.NewReader(sampleInput(3)), &out, 20, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "item 0", rows[1][0])
	assert.Equal(t, "item 2", rows[3][0])
}

func TestSampleRows_NoDuplicates(t *testing.T) {
	var out bytes.Buffer
	_, err := SampleRows(strings.NewReader(sampleInput(30)), &out, 15, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, row := range rows[1:] {
		assert.False(t, seen[row[0]], "duplicate row %q", row[0])
		seen[row[0]] = true
	}
}

func TestSampleRows_PreservesAllColumns(t *testing.T) {
	input := "A,B,C,D\n1,2,3,4\n5,6,7,8\n"
	var out bytes.Buffer
	n, err := SampleRows(strings.NewReader(input), &out, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, rows[1])
}

func TestSampleRows_InvalidSize(t *testing.T) {
	var out bytes.Buffer
	_, err := SampleRows(strings.NewReader(sampleInput(5)), &out, 0, rand.New(rand.NewSource(1)))
	require.Error(t, err)
}

func TestSampleRows_Deterministic(t *testing.T) {
	input := sampleInput(40)

	var a, b bytes.Buffer
	_, err := SampleRows(strings.NewReader(input), &a, 8, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	_, err = SampleRows(strings.NewReader(input), &b, 8, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
}

func TestSampleRowsFile(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.csv")
	outputPath := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte(sampleInput(25)), 0o644))

	n, err := SampleRowsFile(inputPath, outputPath, 5, 42)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	f, err := os.Open(outputPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}
