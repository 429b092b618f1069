// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Structure(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "droidpilot", root.Use)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))

	names := make([]string, 0, 2)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "version")
}

func TestRunCommand_Flags(t *testing.T) {
	root := NewRootCommand()
	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	assert.NotNil(t, run.Flags().Lookup("max-steps"))
	assert.NotNil(t, run.Flags().Lookup("continue-on-error"))
	assert.NotNil(t, run.Flags().Lookup("serial"))
	assert.NotNil(t, run.Flags().Lookup("no-screenshot"))
}

func TestRunCommand_RequiresTask(t *testing.T) {
	root := NewRootCommand()
	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	assert.Error(t, run.Args(run, []string{}))
	assert.NoError(t, run.Args(run, []string{"open settings"}))
}

func TestVersionCommand_Output(t *testing.T) {
	version := newVersionCommand()
	var out bytes.Buffer
	version.SetOut(&out)
	version.Run(version, nil)

	assert.Contains(t, out.String(), "droidpilot version")
	assert.Contains(t, out.String(), Version)
}
