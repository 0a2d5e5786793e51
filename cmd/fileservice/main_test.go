package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// setupEnv points the CLI at a fresh directory with one transform rule
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - pattern: world\n    replacement: gopher\n"), 0644))

	t.Setenv("STORAGE_URL", "file://"+dir)
	t.Setenv("RULES_FILE", rules)
	t.Setenv("TRANSFORM_PRESET", "")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"read", "write", "delete", "list", "transform", "batch", "env"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestWriteReadDelete(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "", "write", "notes.txt", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "Wrote notes.txt (11 bytes)\n", out)

	onDisk, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(onDisk))

	out, err = run(t, "", "read", "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)

	_, err = run(t, "", "delete", "notes.txt")
	require.NoError(t, err)

	_, err = run(t, "", "read", "notes.txt")
	require.Error(t, err)
	assert.Equal(t, fileservice.KindNotFound, fileservice.KindOf(err))
	assert.True(t, strings.HasPrefix(formatError(err), "not_found: "))
}

func TestWriteFromStdinAndFile(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "piped text", "write", "stdin.txt")
	require.NoError(t, err)
	out, err := run(t, "", "read", "stdin.txt")
	require.NoError(t, err)
	assert.Equal(t, "piped text", out)

	local := filepath.Join(t.TempDir(), "local.txt")
	require.NoError(t, os.WriteFile(local, []byte("from disk"), 0644))
	_, err = run(t, "", "write", "copy.txt", "--from-file", local)
	require.NoError(t, err)
	out, err = run(t, "", "read", "copy.txt")
	require.NoError(t, err)
	assert.Equal(t, "from disk", out)

	_, err = run(t, "", "write", "x.txt", "inline", "--from-file", local)
	assert.Error(t, err)
}

func TestListAndTransform(t *testing.T) {
	setupEnv(t)
	for _, name := range []string{"b.txt", "a.txt", "c.md"} {
		_, err := run(t, "", "write", name, "hello world")
		require.NoError(t, err)
	}

	out, err := run(t, "", "list")
	require.NoError(t, err)
	assert.Equal(t, "a.txt\nb.txt\nc.md\n", out)

	out, err = run(t, "", "list", "--match", "*.md")
	require.NoError(t, err)
	assert.Equal(t, "c.md\n", out)

	out, err = run(t, "", "transform", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello gopher", out)
}

func TestBatch(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "", "write", "a.txt", "hello world")
	require.NoError(t, err)

	out, err := run(t, "", "batch", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "== a.txt\nhello gopher\n", out)

	out, err = run(t, "", "batch", "a.txt", "missing.txt")
	require.Error(t, err)
	assert.Contains(t, out, "== a.txt\nhello gopher\n")
	assert.Contains(t, out, "!! missing.txt: not_found: ")
	assert.Equal(t, "1 of 2 items failed", err.Error())

	out, err = run(t, "", "batch", "--match", "*.txt")
	require.NoError(t, err)
	assert.Equal(t, "== a.txt\nhello gopher\n", out)

	_, err = run(t, "", "batch")
	assert.Error(t, err)
}

func TestMissingBasePath(t *testing.T) {
	t.Setenv("STORAGE_URL", "")
	t.Setenv("BASE_PATH", "")

	_, err := run(t, "", "list")
	require.Error(t, err)
	assert.Equal(t, fileservice.KindConfigMissing, fileservice.KindOf(err))
}

func TestEnvCommand(t *testing.T) {
	out, err := run(t, "", "env")
	require.NoError(t, err)
	assert.Contains(t, out, "STORAGE_URL")
	assert.Contains(t, out, "BASE_PATH")
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "error: boom", formatError(errors.New("boom")))
	assert.Equal(t, `not_found: file "x" not found`, formatError(&fileservice.NotFoundError{Resource: "file", Key: "x"}))
}
