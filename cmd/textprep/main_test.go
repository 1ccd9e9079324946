package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TEXTPREP_CONFIG", "")
	var out, errOut bytes.Buffer
	ui := UI{In: strings.NewReader(stdin), Out: &out, Err: &errOut}
	err := newApp(ui).Run(append([]string{"textprep"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunArgs(t *testing.T) {
	out, err := runApp(t, "", "run", "I have 2 cats & 3 dogs", "this is my example text")
	require.NoError(t, err)
	assert.Equal(t, "two cat three dog\nexample text\n", out)
}

func TestRunStdin(t *testing.T) {
	out, err := runApp(t, "this is my example text\n\n!!!\n", "run")
	require.NoError(t, err)
	assert.Equal(t, "example text\n\n\n", out, "one output line per input line")
}

func TestRunWithSpelling(t *testing.T) {
	dict := writeFile(t, "freq.txt", "have 100\ncats 40\ncat 60\n")
	out, err := runApp(t, "", "run", "--spell", "--spell-dict", dict, "I havv 2 catts")
	require.NoError(t, err)
	assert.Equal(t, "two cat\n", out)
}

func TestStages(t *testing.T) {
	out, err := runApp(t, "", "stages")
	require.NoError(t, err)
	assert.Equal(t, "normalize -> expand_numbers -> lemmatize_filter\n", out)

	_, err = runApp(t, "", "stages", "--spell")
	assert.Error(t, err, "spelling without a dictionary must fail")

	dict := writeFile(t, "freq.txt", "word 1\n")
	out, err = runApp(t, "", "stages", "--spell", "--spell-dict", dict)
	require.NoError(t, err)
	assert.Equal(t, "normalize -> expand_numbers -> correct_spelling -> lemmatize_filter\n", out)
}

func TestBatch(t *testing.T) {
	in := writeFile(t, "in.jsonl", `{"id":"x","text":"I have 2 cats & 3 dogs"}
{"id":"y","text":"this is my example text"}
`)
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	_, err := runApp(t, "", "batch", "--in", in, "--out", outPath, "--workers", "2", "--progress")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"x","output":"two cat three dog"}
{"id":"y","output":"example text"}
`, string(data))
}

func TestBatchLinesToStdout(t *testing.T) {
	in := writeFile(t, "in.txt", "this is my example text\n")
	out, err := runApp(t, "", "batch", "--in", in, "--format", "lines")
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"1\",\"output\":\"example text\"}\n", out)

	_, err = runApp(t, "", "batch", "--in", in, "--format", "csv")
	assert.Error(t, err)
}

func TestImportNeedsTarget(t *testing.T) {
	_, err := runApp(t, "", "import", "--defaults")
	assert.Error(t, err)

	_, err = runApp(t, "", "import", "--db", "a.db", "--dsn", "postgres://x")
	assert.Error(t, err)
}

func TestImportThenRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "resources.db")
	stoplist := writeFile(t, "stop.yaml", "terms:\n  - example\n")

	out, err := runApp(t, "", "import", "--db", db, "--defaults", "--stoplist", stoplist)
	require.NoError(t, err)
	assert.Contains(t, out, "1 stopwords")

	out, err = runApp(t, "", "--db", db, "run", "this is my example text")
	require.NoError(t, err)
	assert.Equal(t, "this be my text\n", out)
}
