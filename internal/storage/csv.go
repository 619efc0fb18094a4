package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// TrajectoryHeader names the columns of an n-body trajectory table:
// t, x0, y0, z0, ..., vx0, vy0, vz0, ...
func TrajectoryHeader(n int) []string {
	header := make([]string, 0, 1+6*n)
	header = append(header, "t")
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i), fmt.Sprintf("vz%d", i))
	}
	return header
}

// WriteCSV writes one header line and one row per snapshot. Values are
// written with the shortest representation that parses back exactly.
func WriteCSV(w io.Writer, snapshots []dynamo.Snapshot) error {
	cw := csv.NewWriter(w)
	if len(snapshots) > 0 {
		if err := cw.Write(TrajectoryHeader(snapshots[0].NumBodies())); err != nil {
			return err
		}
	}

	tab := (&dynamo.Result{Snapshots: snapshots}).Table()
	if tab == nil {
		cw.Flush()
		return cw.Error()
	}

	rows, cols := tab.Dims()
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j, v := range tab.RawRowView(i) {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(r io.Reader) ([]dynamo.Snapshot, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Snapshot{}, nil
	}

	snapshots := make([]dynamo.Snapshot, 0, len(records)-1)
	row := make([]float64, len(records[0]))
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", i+2, j+1, err)
			}
			row[j] = v
		}
		s, err := dynamo.SnapshotFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}
