package dataset

import (
	"context"
	"log"
	"os"
)

// FileSource implements Source for local CSV files
type FileSource struct {
	path    string
	mapping ColumnMapping
	logger  *log.Logger
}

// NewFileSource creates a new file-backed dataset source
func NewFileSource(path string, mapping ColumnMapping, logger *log.Logger) *FileSource {
	return &FileSource{
		path:    path,
		mapping: mapping,
		logger:  logger,
	}
}

// Load reads and parses the CSV file
func (s *FileSource) Load(ctx context.Context) (*LoadResult, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(s.Name(), ErrCodeNotFound, "dataset file not found", err)
		}
		return nil, NewSourceError(s.Name(), ErrCodeUnknown, "failed to open dataset file", err)
	}
	defer f.Close()

	return parseCSV(f, s.mapping, s.Name(), s.logger)
}

// Name returns the dataset file path
func (s *FileSource) Name() string {
	return s.path
}
