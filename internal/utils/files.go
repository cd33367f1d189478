package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadFloatPairs reads two whitespace-separated numbers per line. Empty lines and
// lines starting with # are skipped.
func ReadFloatPairs(filename string) ([][2]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	var result [][2]float64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Fields(line)

		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format in line: %q - expected 2 numbers, got %d", line, len(parts))
		}

		var pair [2]float64
		for i := range pair {
			pair[i], err = strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing float in line %q: %w", line, err)
			}
		}
		result = append(result, pair)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return result, nil
}

// GetFilename strips directories and the extension.
func GetFilename(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OpenFile creates outputPath/fileSuffix/modelName.ext when makeDir is set,
// outputPath/modelName_fileSuffix.ext otherwise.
func OpenFile(makeDir bool, outputPath string, fileSuffix, modelName, ext string) (*os.File, error) {
	switch {
	case fileSuffix == "" || fileSuffix == ".":
		return os.Create(filepath.Join(outputPath, modelName+"."+ext))
	case makeDir:
		if err := os.MkdirAll(filepath.Join(outputPath, fileSuffix), 0750); err != nil {
			return nil, err
		}
		return os.Create(filepath.Join(outputPath, fileSuffix, modelName+"."+ext))
	}
	return os.Create(filepath.Join(outputPath, modelName+"_"+fileSuffix+"."+ext))
}

// CloseFile is deferred on write paths with a named error result: a failed Close
// surfaces when nothing else went wrong first.
func CloseFile(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
