package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/topology"
)

// FileName returns the default output file name of format, or "" for an
// unknown format.
func FileName(format string) string {
	switch format {
	case "conf":
		return constants.ConfFileName
	case "pro":
		return constants.ProFileName
	case "csv":
		return constants.CSVFileName
	case "arrow":
		return constants.ArrowFileName
	}
	return ""
}

// WriteAll writes res into dir once per format and returns the written
// paths in format order.
func WriteAll(dir string, formats []string, res *topology.Result) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	written := make([]string, 0, len(formats))
	for _, format := range formats {
		name := FileName(format)
		if name == "" {
			return written, fmt.Errorf("unknown output format: %s", format)
		}
		path := filepath.Join(dir, name)
		if err := writeFile(path, func(f *os.File) error {
			switch format {
			case "conf":
				return WriteConf(f, res.Instances)
			case "pro":
				return WritePro(f, res.Events)
			case "csv":
				return WriteCSV(f, res.Instances)
			default:
				return WriteArrow(f, res.Instances)
			}
		}); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
