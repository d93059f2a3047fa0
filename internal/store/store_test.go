package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/models"
)

func derive(t *testing.T) *bondgraph.Derivation {
	t.Helper()
	m, err := models.Build(models.SpringMassDamper())
	require.NoError(t, err)
	d, err := m.Derive()
	require.NoError(t, err)
	return d
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(Run{Model: "spring_mass_damper", Root: "body", Removed: []string{"body:3"}}, derive(t))
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	assert.NoError(t, err, "run id should be a uuid")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "spring_mass_damper", meta.Model)
	assert.Equal(t, []string{"x", "v"}, meta.States)
	assert.Equal(t, []string{"F"}, meta.Inputs)
	assert.Equal(t, []string{"b", "k", "m"}, meta.Parameters)
	assert.Equal(t, []string{"body:3"}, meta.Removed)

	eqs, err := st.LoadEquations(runID)
	require.NoError(t, err)
	assert.Equal(t, []EquationRecord{
		{State: "x", Derivative: "x'", RHS: "v"},
		{State: "v", Derivative: "v'", RHS: "F/m - b*v/m - x/(k*m)"},
	}, eqs)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	d := derive(t)
	first, err := st.Save(Run{Model: "a"}, d)
	require.NoError(t, err)
	second, err := st.Save(Run{Model: "b"}, d)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// stray directory without metadata
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(Run{Model: "test"}, derive(t))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "equations.csv"))
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = st.LoadEquations("nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = st.Save(Run{}, nil)
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Run{Model: "spring_mass_damper", Root: "body"}, derive(t)))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "body", data.Root)
	assert.Equal(t, []string{"x' = v", "v' = F/m - b*v/m - x/(k*m)"}, data.Equations)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, ExportJSON(path, Run{Model: "spring_mass_damper"}, derive(t)))
	assert.FileExists(t, path)
}
