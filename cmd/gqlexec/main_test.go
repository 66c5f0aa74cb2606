package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	defer func() { os.Stdout = old }()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() { io.Copy(&buf, r); close(done) }()

	runErr := fn()
	w.Close()
	<-done
	return buf.String(), runErr
}

func TestHelp(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return run([]string{"help", "serve"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "serve FLAGS")
}

func TestUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "schema.graphql")
	require.NoError(t, os.WriteFile(file, []byte(`
		type Query { hello: String }
	`), 0o644))

	out, err := captureStdout(t, func() error {
		return run([]string{"check", "-schema.file", file})
	})
	require.NoError(t, err)
	require.Contains(t, out, "schema ok")
	require.Contains(t, out, "Query")
}

func TestCheckRejectsBrokenSchema(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "schema.graphql")
	require.NoError(t, os.WriteFile(file, []byte(`type Query {`), 0o644))

	err := run([]string{"check", "-schema.file", file})
	require.Error(t, err)
}

func TestCheckRequiresQueryRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "schema.graphql")
	require.NoError(t, os.WriteFile(file, []byte(`type Other { x: Int }`), 0o644))

	err := run([]string{"check", "-schema.file", file})
	require.Error(t, err)
}
