package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gosage/io"
)

func TestGetModeName(t *testing.T) {
	table := []struct {
		run, example string
		mode         string
		err          bool
	}{
		{"model.yaml", "", "Run", false},
		{"", "Model", "ExampleConfig", false},
		{"", "", "", true},
		{"model.yaml", "Model", "", true},
	}

	for i, test := range table {
		run, example := test.run, test.example
		mode, err := getModeName(map[string]*string{
			"Run": &run, "ExampleConfig": &example,
		})
		if test.err {
			assert.Error(t, err, "%d)", i+1)
			continue
		}
		require.NoError(t, err, "%d)", i+1)
		assert.Equal(t, test.mode, mode, "%d)", i+1)
	}
}

func TestRunMainError(t *testing.T) {
	dir := t.TempDir()
	con := io.DefaultModelWrapper().Model
	con.FileWithSnapList = filepath.Join(dir, "missing")
	con.LogFile = filepath.Join(dir, "gosage.log")
	con.ProfileFile = filepath.Join(dir, "gosage.prof")

	fg := runSetupIO(&con)
	err := runMain(&con)
	fg.Close()
	log.SetOutput(os.Stderr)
	require.Error(t, err)

	text, err := os.ReadFile(con.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Running Run main.")

	// The profile is only written out once it has been stopped.
	info, err := os.Stat(con.ProfileFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
