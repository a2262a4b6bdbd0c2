package ops

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/project"
)

// ExportCSVInput configures a segment export. Path is optional; when empty
// the file is written under baseDir/exports with a timestamped name.
type ExportCSVInput struct {
	Path string `json:"path,omitempty"`
}

// ExportCSVOutput reports where the export landed.
type ExportCSVOutput struct {
	Path     string `json:"path"`
	Segments int    `json:"segments"`
}

// SegmentsCSV renders every coded segment as CSV with a header row of
// "Segment Text" and "Assigned Codes". Assigned code names are joined with
// ", "; an assignment whose code no longer exists renders as "Unknown".
func SegmentsCSV(p *project.Project) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Segment Text", "Assigned Codes"}); err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, seg := range p.CodedSegments {
		names := make([]string, 0, len(seg.CodeIDs))
		for _, id := range seg.CodeIDs {
			if code := p.FindCode(id); code != nil {
				names = append(names, code.Name)
			} else {
				names = append(names, "Unknown")
			}
		}
		if err := w.Write([]string{seg.Text, strings.Join(names, ", ")}); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return buf.Bytes(), nil
}

// ExportCSV writes the segment CSV to disk. An explicit path must end in
// .csv and must not contain path traversal; the default path is
// baseDir/exports/segments-<timestamp>.csv.
func ExportCSV(db *sql.DB, baseDir string, in ExportCSVInput) (*ExportCSVOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	path := strings.TrimSpace(in.Path)
	if path == "" {
		name := fmt.Sprintf("segments-%s.csv", time.Now().Format("2006-01-02-150405"))
		path = filepath.Join(baseDir, "exports", name)
	} else {
		if !strings.HasSuffix(strings.ToLower(path), ".csv") {
			return nil, errors.NewValidation("export path must end in .csv")
		}
		if strings.Contains(path, "..") {
			return nil, errors.NewValidation("export path must not contain path traversal")
		}
	}

	data, err := SegmentsCSV(p)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportCSVOutput{Path: path, Segments: len(p.CodedSegments)}, nil
}
