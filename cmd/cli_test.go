package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestDocCreateThenList(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "doc", "create", "--title", "Meeting notes", "--body", "agenda")
	require.NoError(t, err)
	assert.Equal(t, "created meeting-notes\n", stdout)

	stdout, _, err = executeCLI(t, home, "doc", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "documents: 1")
	assert.Contains(t, stdout, "Meeting notes (meeting-notes)")

	_, err = os.Stat(filepath.Join(home, ".inline-edit", "documents", "meeting-notes.md"))
	require.NoError(t, err)
}

func TestDocListJSONOutput(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeDocumentFixture(home, "q3", "---\ntitle: Q3 revenue\nkind: metric\nrevision: 4\n---\n42"))

	stdout, _, err := executeCLI(t, home, "doc", "list", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"ID\": \"q3\"")
	assert.Contains(t, stdout, "\"Kind\": \"metric\"")
	assert.Contains(t, stdout, "\"Revision\": 4")
}

func TestDocCreateRequiresTitle(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "doc", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"title\" not set")
}

func TestDocCreateRejectsDuplicate(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Notes")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "doc", "create", "--title", "Notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document already exists")
}

func TestDocCreateRejectsUnknownKind(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "doc", "create", "--title", "x", "--kind", "hologram")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content kind")
}

func TestDocWriteSavesThroughSession(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Notes", "--body", "v1")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "doc", "write", "notes", "--content", "v2")
	require.NoError(t, err)
	assert.Equal(t, "saved notes (rev 2)\n", stdout)

	stdout, _, err = executeCLI(t, home, "doc", "show", "notes")
	require.NoError(t, err)
	assert.Equal(t, "v2", stdout)
}

func TestDocWriteSameContentDoesNotBumpRevision(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Notes", "--body", "same")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "doc", "write", "notes", "--content", "same")
	require.NoError(t, err)
	assert.Equal(t, "saved notes (rev 1)\n", stdout)
}

func TestDocShowUnknownDocument(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "doc", "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestDocShowRender(t *testing.T) {
	home := t.TempDir()
	t.Setenv("IE_RENDER_STYLE", "notty")
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Plan", "--body", "- ship it")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "doc", "show", "plan", "--render")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Plan")
	assert.Contains(t, stdout, "ship it")
}

func TestDocReplaceReportsOutcome(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Pets", "--body", "teh cat and teh dog")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "doc", "replace", "pets", "--find", "teh", "--with", "the")
	require.NoError(t, err)
	assert.Equal(t, "pets: replaced\n", stdout)

	stdout, _, err = executeCLI(t, home, "doc", "show", "pets")
	require.NoError(t, err)
	assert.Equal(t, "the cat and teh dog", stdout)
}

func TestDocReplaceMissingText(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Pets", "--body", "cat")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "doc", "replace", "pets", "--find", "dog", "--with", "wolf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selection no longer present")
}

func TestDocAssistPipesTextThroughCommand(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Shout", "--body", "say hello please")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "doc", "assist", "shout", "--find", "hello", "--command", "tr a-z A-Z")
	require.NoError(t, err)
	assert.Equal(t, "shout: replaced\n", stdout, "spinner output stays off stdout")

	stdout, _, err = executeCLI(t, home, "doc", "show", "shout")
	require.NoError(t, err)
	assert.Equal(t, "say HELLO please", stdout)
}

func TestDocAssistUsesConfiguredCommand(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home, "[assist]\ncommand = \"rev\"\n"))
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Mirror", "--body", "abc")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "doc", "assist", "mirror", "--find", "abc")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "doc", "show", "mirror")
	require.NoError(t, err)
	assert.Equal(t, "cba", stdout)
}

func TestDocAssistWithoutCommand(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "doc", "create", "--title", "Notes", "--body", "x")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "doc", "assist", "notes", "--find", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assist command is empty")
}

func TestTOMLBackendFromFlag(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "--backend", "toml", "doc", "create", "--title", "Notes", "--body", "in toml")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".inline-edit", "documents.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "notes")

	stdout, _, err := executeCLI(t, home, "--backend", "toml", "doc", "show", "notes")
	require.NoError(t, err)
	assert.Equal(t, "in toml", stdout)
}

func TestInvalidConfigFailsCommands(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeConfigFixture(home, "[log]\nlevel = \"chatty\"\n"))

	_, _, err := executeCLI(t, home, "doc", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level: chatty")

	stdout, _, err := executeCLI(t, home, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestLogFileReceivesDebugRecords(t *testing.T) {
	home := t.TempDir()
	logPath := filepath.Join(home, "ie.log")

	_, stderr, err := executeCLI(t, home, "--log-level", "debug", "doc", "list")
	require.NoError(t, err)
	assert.Contains(t, stderr, "msg=wired")

	require.NoError(t, writeConfigFixture(home, "[log]\nlevel = \"debug\"\nfile = \""+logPath+"\"\n"))
	_, stderr, err = executeCLI(t, home, "doc", "list")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "msg=wired")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=wired")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDocumentFixture(home, id, content string) error {
	dir := filepath.Join(home, ".inline-edit", "documents")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, id+".md"), []byte(content), 0o600)
}

func writeConfigFixture(home, content string) error {
	dir := filepath.Join(home, ".inline-edit")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)
}
