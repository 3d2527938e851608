//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), runErr
}

func TestVersionCommand(t *testing.T) {
	output, err := captureStdout(t, func() error {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"version"})
		return cmd.ExecuteContext(context.Background())
	})

	require.NoError(t, err, "version command should not return an error")
	assert.Contains(t, output, "sentfetch version")
}

func TestHelpCommand(t *testing.T) {
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"help"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	output := buf.String()
	assert.Contains(t, output, "fetch")
	assert.Contains(t, output, "version")
}

func TestFetchCommand_RequiresConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"fetch"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
}
