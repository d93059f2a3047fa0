package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/bondsim/internal/bondgraph"
)

type ExportData struct {
	Model      string   `json:"model"`
	Root       string   `json:"root"`
	States     []string `json:"states"`
	Inputs     []string `json:"inputs"`
	Parameters []string `json:"parameters"`
	Equations  []string `json:"equations"`
}

func NewExportData(run Run, d *bondgraph.Derivation) ExportData {
	data := ExportData{
		Model:      run.Model,
		Root:       run.Root,
		States:     names(d.States),
		Inputs:     names(d.Inputs),
		Parameters: names(d.Parameters),
		Equations:  make([]string, len(d.Equations)),
	}
	for i, eq := range d.Equations {
		data.Equations[i] = eq.String()
	}
	return data
}

// WriteJSON encodes the derivation as indented JSON.
func WriteJSON(w io.Writer, run Run, d *bondgraph.Derivation) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(run, d))
}

func ExportJSON(path string, run Run, d *bondgraph.Derivation) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, run, d)
}
