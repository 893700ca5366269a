package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	typesModule = `module types {
  namespace "urn:example:types";
  prefix t;
  revision 2024-03-01;
  typedef port { type uint16 { range "1..65535"; } }
}`
	serverModule = `module server {
  namespace "urn:example:server";
  prefix s;
  import types { prefix t; }
  feature tls;
  container server {
    leaf port { type t:port; }
    leaf certificate { if-feature tls; type string; }
  }
}`
	strictModule = `module strict {
  namespace "urn:example:strict";
  prefix st;
  import types { prefix t; revision-date 2099-01-01; }
}`
)

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runWithArgs(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunText(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"types@2024-03-01.yang": typesModule,
		"server.yang":           serverModule,
	})
	code, stdout, stderr := runCLI(t, "--repository", dir, "server", "types")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "module server (urn:example:server)\n")
	assert.Contains(t, stdout, "  container server\n")
	assert.Contains(t, stdout, "    leaf port: port")
	assert.Contains(t, stdout, "    leaf certificate: string\n")
	assert.Contains(t, stdout, "module types@2024-03-01 (urn:example:types)\n")
}

func TestRunJSON(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"types@2024-03-01.yang": typesModule,
		"server.yang":           serverModule,
	})
	code, stdout, stderr := runCLI(t, "-r", dir, "-o", "json", "--feature", "other", "server", "types@2024-03-01")
	require.Equal(t, exitOK, code, stderr)

	var out contextJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Modules, 2)
	server := out.Modules[0]
	assert.Equal(t, "server", server.Name)
	assert.Equal(t, []string{"tls"}, server.Features)
	require.Len(t, server.Nodes, 1)
	require.Len(t, server.Nodes[0].Children, 1, "certificate is disabled by its feature")
	port := server.Nodes[0].Children[0]
	assert.Equal(t, "port", port.Name)
	assert.Equal(t, "urn:example:server", port.Namespace)
	assert.True(t, port.Config)
	assert.Equal(t, "2024-03-01", out.Modules[1].Revision)
}

func TestRunUnresolved(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"types@2024-03-01.yang": typesModule,
		"strict.yang":           strictModule,
	})

	code, _, stderr := runCLI(t, "-r", dir, "strict", "types")
	require.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "strict is missing import types@2099-01-01")
	assert.Contains(t, stderr, "unresolved: strict")

	code, stdout, _ := runCLI(t, "-r", dir, "--format", "json", "strict", "types")
	require.Equal(t, exitFailure, code)
	var d diagnosticJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &d))
	assert.Equal(t, []string{"types@2024-03-01"}, d.Resolved)
	require.Len(t, d.Unsatisfied, 1)
	assert.Equal(t, unsatisfiedJSON{Source: "strict", Missing: []string{"import types@2099-01-01"}}, d.Unsatisfied[0])
}

func TestRunReactorFailure(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"broken.yang": `module broken {
  namespace "urn:broken";
  prefix b;
  leaf x { type no-such-type; }
}`,
	})
	code, _, stderr := runCLI(t, "-r", dir, "broken")
	require.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "unknown-type")
	assert.Contains(t, stderr, "at broken:4:")
}

func TestRunMissingSource(t *testing.T) {
	dir := writeSources(t, map[string]string{"types@2024-03-01.yang": typesModule})
	code, _, stderr := runCLI(t, "-r", dir, "nothing")
	require.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "source not found")
}

func TestRunUsageErrors(t *testing.T) {
	dir := writeSources(t, map[string]string{"types@2024-03-01.yang": typesModule})
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no sources", args: []string{"-r", dir}, want: "no sources given"},
		{name: "unknown flag", args: []string{"--bogus", "types"}, want: "bogus"},
		{name: "bad mode", args: []string{"-r", dir, "--mode", "fuzzy", "types"}, want: "unknown mode"},
		{name: "bad format", args: []string{"-r", dir, "-o", "xml", "types"}, want: "unknown format"},
		{name: "bad source", args: []string{"-r", dir, "types@yesterday"}, want: "types@yesterday"},
		{name: "bad log level", args: []string{"-r", dir, "--log-level", "loud", "types"}, want: "log level"},
		{name: "missing config", args: []string{"-c", filepath.Join(dir, "none.yaml"), "types"}, want: "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, tt.want)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"types@2024-03-01.yang": typesModule,
		"server.yang":           serverModule,
	})
	cfgPath := filepath.Join(t.TempDir(), "yangctx.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
		"repository: " + dir,
		"mode: fuzzy",
		"format: json",
		"fetchTimeout: 5s",
		"logLevel: error",
		"sources:",
		"  - server",
		"  - types",
	}, "\n")), 0o644))

	code, _, stderr := runCLI(t, "-c", cfgPath)
	require.Equal(t, exitUsage, code, "mode from the file is invalid")
	assert.Contains(t, stderr, "unknown mode")

	code, stdout, stderr := runCLI(t, "-c", cfgPath, "--mode", "semver")
	require.Equal(t, exitOK, code, stderr)
	var out contextJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Len(t, out.Modules, 2)
}

func TestRunConfigRejectsUnknownKeys(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "yangctx.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("repo: .\n"), 0o644))
	code, _, stderr := runCLI(t, "-c", cfgPath, "types")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "parse config")
}

func TestConfigMerge(t *testing.T) {
	file := config{Repository: "file-repo", Mode: "semver", Features: []string{"a"}, LogLevel: "debug"}
	flags := config{Repository: "flag-repo", Mode: "plain"}
	changed := func(name string) bool { return name == "repository" }

	got := defaultConfig().merge(file, nil).merge(flags, changed)
	assert.Equal(t, config{
		Repository: "flag-repo",
		Mode:       "semver",
		Features:   []string{"a"},
		Format:     "text",
		LogLevel:   "debug",
	}, got)
}
