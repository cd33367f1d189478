package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/facette/natsort"
)

// CSV rows are ordered by their first column in natural order, so model_2 precedes model_10.
type CSV [][]string

func (data CSV) Less(i, j int) bool {
	return natsort.Compare(data[i][0], data[j][0])
}

func (data CSV) Len() int {
	return len(data)
}
func (data CSV) Swap(i, j int) {
	data[i], data[j] = data[j], data[i]
}

// WriteSorted writes the header followed by data sorted naturally by the first column.
func WriteSorted(w io.Writer, data CSV, columns []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	sort.Sort(data)
	if err := writer.WriteAll(data); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

// WriteAsCSV saves data under path/subpath/filename.csv, see OpenFile.
func WriteAsCSV(data CSV, path, subpath, filename string, columns []string) (err error) {
	file, err := OpenFile(true, path, subpath, GetFilename(filename), "csv")
	if err != nil {
		return err
	}
	defer CloseFile(file, &err)
	return WriteSorted(file, data, columns)
}
