package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Row is a single entry of the label manifest
type Row struct {
	ID    string
	Label int
}

// ReadManifest parses a CSV manifest with a header row. The "id" and "label" columns are located
// by name; any other columns are ignored. Labels must be 0 or 1.
func ReadManifest(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyManifest
	} else if err != nil {
		return nil, errors.Wrapf(err, "Failed to read manifest header\n")
	}

	idCol, labelCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id":
			idCol = i
		case "label":
			labelCol = i
		}
	}
	if idCol < 0 || labelCol < 0 {
		return nil, errors.Errorf("Manifest header %q must have both \"id\" and \"label\" columns", header)
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "Failed to read manifest line %d\n", line)
		}

		id := strings.TrimSpace(rec[idCol])
		if id == "" {
			return nil, errors.Errorf("Manifest line %d has an empty id", line)
		}

		label, err := strconv.Atoi(strings.TrimSpace(rec[labelCol]))
		if err != nil || (label != 0 && label != 1) {
			return nil, errors.Errorf("Manifest line %d has label %q, must be 0 or 1", line, rec[labelCol])
		}

		rows = append(rows, Row{ID: id, Label: label})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyManifest
	}

	return rows, nil
}
