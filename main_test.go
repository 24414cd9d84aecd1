package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callMain() (int, string) {
	exitCode := -1
	oldExit := exit
	defer func() { exit = oldExit }()
	exit = func(code int) {
		exitCode = code
		panic("exit")
	}

	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outputDone := make(chan struct{})
	go func() {
		io.Copy(&buf, r)
		close(outputDone)
	}()

	func() {
		defer func() {
			if r := recover(); r != nil && r != "exit" {
				panic(r)
			}
		}()
		RealMain()
	}()

	w.Close()
	os.Stdout = oldStdout
	<-outputDone
	return exitCode, buf.String()
}

func TestRealMain(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	cfg := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[storage]\nin_memory = true\n"), 0644))

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           []string{"yatube"},
			expectedExit:   1,
			expectedOutput: "Usage: yatube [--config <file>] <command>",
		},
		{
			name:           "help command",
			args:           []string{"yatube", "help"},
			expectedExit:   0,
			expectedOutput: "Commands:",
		},
		{
			name:           "version command",
			args:           []string{"yatube", "version"},
			expectedExit:   0,
			expectedOutput: "yatube version " + CliVersion,
		},
		{
			name:           "unknown command",
			args:           []string{"yatube", "--config", cfg, "unknown"},
			expectedExit:   1,
			expectedOutput: "Unknown command: unknown",
		},
		{
			name:           "restore without file",
			args:           []string{"yatube", "--config", cfg, "restore"},
			expectedExit:   1,
			expectedOutput: "backup file path required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			exitCode, output := callMain()
			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
