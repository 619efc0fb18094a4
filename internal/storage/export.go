package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type ExportData struct {
	Name        string             `json:"name"`
	Integrator  string             `json:"integrator"`
	Units       string             `json:"units"`
	G           float64            `json:"g"`
	TMax        float64            `json:"t_max"`
	MinDt       float64            `json:"min_dt"`
	DtOutput    float64            `json:"dt_output"`
	Masses      []float64          `json:"masses"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Columns     []string           `json:"columns"`
	Rows        [][]float64        `json:"rows"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(meta RunMetadata, result *dynamo.Result) ExportData {
	data := ExportData{
		Name:        meta.Name,
		Integrator:  meta.Integrator,
		Units:       meta.Units,
		G:           meta.G,
		TMax:        meta.TMax,
		MinDt:       meta.MinDt,
		DtOutput:    meta.DtOutput,
		Masses:      meta.Masses,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Rows:        make([][]float64, len(result.Snapshots)),
		Metrics:     result.Metrics,
	}
	if len(result.Snapshots) > 0 {
		data.Columns = TrajectoryHeader(result.Snapshots[0].NumBodies())
	}
	for i, s := range result.Snapshots {
		data.Rows[i] = s.Row()
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, meta RunMetadata, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, NewExportData(meta, result))
}

func ExportJSONStdout(meta RunMetadata, result *dynamo.Result) error {
	return WriteJSON(os.Stdout, NewExportData(meta, result))
}

func ExportCSV(path string, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, result.Snapshots)
}
