// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "# lessonctl games results\n\n" +
	"## Short description\n\n" +
	"List your recent\nmini-game results.\n\n" +
	"A second paragraph.\n\n" +
	"## Quick examples\n\n" +
	"```sh\n" +
	"# Show the last results\n" +
	"lessonctl games   results\n\n" +
	"lessonctl games results --limit 5\n" +
	"```\n\n" +
	"## Description\n\nMore.\n"

func TestSection(t *testing.T) {
	assert.Equal(t, "\n\nMore.\n", section(page, "description"))
	assert.Empty(t, section(page, "Nope"))
}

func TestExtractTitleAndShortDesc(t *testing.T) {
	title, short := extractTitleAndShortDesc(page)
	assert.Equal(t, "lessonctl games results", title)
	assert.Equal(t, "List your recent mini-game results.", short)

	title, short = extractTitleAndShortDesc("# lessonctl dash\n\nNo sections.\n")
	assert.Equal(t, "lessonctl dash", title)
	assert.Equal(t, "lessonctl dash.", short)
}

func TestExtractQuickExamples(t *testing.T) {
	exs := extractQuickExamples(page)
	require.Len(t, exs, 2)
	assert.Equal(t, example{Desc: "Show the last results", Cmd: "lessonctl games results"}, exs[0])
	assert.Equal(t, example{Desc: "Example", Cmd: "lessonctl games results --limit 5"}, exs[1])

	assert.Nil(t, extractQuickExamples("# x\n\n## Quick examples\n\nnone\n"))
}

func TestBuildTLDR(t *testing.T) {
	got := buildTLDR("games-results", "", "", nil)
	assert.Equal(t, "# lessonctl-games-results\n\n"+
		"> lessonctl games results\n"+
		"> More information: "+repoURL+".\n\n"+
		"- Show help for the command:\n\n"+
		"`lessonctl games results --help`\n", got)

	got = buildTLDR("status", "", "Show the session.", []example{
		{Desc: "Check", Cmd: "lessonctl status"},
		{Desc: "YAML", Cmd: "lessonctl status --output yaml"},
	})
	assert.Contains(t, got, "> Show the session.\n")
	assert.Contains(t, got, "- Check:\n\n`lessonctl status`\n\n- YAML:\n\n`lessonctl status --output yaml`\n")
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "docs", "commands")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "games-results.md"), []byte(page), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	n, err := generate(root, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	man, err := os.ReadFile(filepath.Join(root, "docs", "man", "share", "man1", "lessonctl-games-results.1"))
	require.NoError(t, err)
	assert.NotEmpty(t, man)

	tldrPath := filepath.Join(root, "docs", "tldr", "lessonctl-games-results.md")
	tldr, err := os.ReadFile(tldrPath)
	require.NoError(t, err)
	assert.Contains(t, string(tldr), "`lessonctl games results --limit 5`")

	// Unchanged content is left alone.
	before, err := os.Stat(tldrPath)
	require.NoError(t, err)
	_, err = generate(root, true)
	require.NoError(t, err)
	after, err := os.Stat(tldrPath)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestGenerate_NoPages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "commands"), 0o755))
	_, err := generate(root, true)
	assert.Error(t, err)
}
