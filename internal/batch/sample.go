package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"
)

// SampleRows copies the header and up to maxRows randomly chosen data rows
// from one CSV to another. Sampled rows keep their original relative order
// and every column passes through untouched. Returns the number of rows
// written.
func SampleRows(r io.Reader, w io.Writer, maxRows int, rng *rand.Rand) (int, error) {
	if maxRows < 1 {
		return 0, fmt.Errorf("sample size must be at least 1")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, record)
	}

	picked := rows
	if len(rows) > maxRows {
		indexes := rng.Perm(len(rows))[:maxRows]
		sort.Ints(indexes)
		picked = make([][]string, 0, maxRows)
		for _, i := range indexes {
			picked = append(picked, rows[i])
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range picked {
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, err
	}
	return len(picked), nil
}

// SampleRowsFile samples a CSV file on disk. A non-positive seed draws one
// from the clock.
func SampleRowsFile(inputPath, outputPath string, maxRows int, seed int64) (int, error) {
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create sample csv: %w", err)
	}
	defer out.Close()

	n, err := SampleRows(in, out, maxRows, rand.New(rand.NewSource(seed)))
	if err != nil {
		return 0, err
	}
	return n, out.Close()
}
