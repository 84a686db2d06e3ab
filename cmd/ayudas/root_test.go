package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		etlSource, etlFormat, etlSheet, cfgPath = "", "", "", ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestETLCommand_MemoryStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ayudas.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"FECHA,DEPARTAMENTO,DISTRITO,LOCALIDAD,EVENTO,KIT A,COLCHONES\n"+
			"2022-01-10,Central,Luque,Centro,Incendio,3,2\n"+
			"2022-01-11,Central,Luque,Centro,,1,0\n",
	), 0o600))
	t.Setenv("AYUDAS_STORE_DRIVER", "memory")

	out, err := runCLI(t, "etl", "--config", writeConfig(t, dir), "--source", path)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, sonic.UnmarshalString(out, &report))
	assert.Equal(t, float64(2), report["total"])
	assert.Equal(t, float64(1), report["inserted"])
	assert.Equal(t, float64(1), report["skipped"])
	assert.Equal(t, map[string]any{"missing_event": float64(1)}, report["skipped_by"])
}

func TestETLCommand_PrintsEveryRowError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ayudas.csv")
	var csv strings.Builder
	csv.WriteString("FECHA,DEPARTAMENTO,EVENTO,KIT A\n")
	for i := 0; i < 150; i++ {
		csv.WriteString("2022-01-10,CENTRAL,,1\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(csv.String()), 0o600))
	t.Setenv("AYUDAS_STORE_DRIVER", "memory")

	out, err := runCLI(t, "etl", "--config", writeConfig(t, dir), "--source", path)
	require.NoError(t, err)

	var report struct {
		Skipped int              `json:"skipped"`
		Errors  []map[string]any `json:"errors"`
	}
	require.NoError(t, sonic.UnmarshalString(out, &report))
	assert.Equal(t, 150, report.Skipped)
	assert.Len(t, report.Errors, 150)
	assert.NotContains(t, out, "errors_truncated")
}

func TestETLCommand_SourceErrorFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AYUDAS_STORE_DRIVER", "memory")

	_, err := runCLI(t, "etl", "--config", writeConfig(t, dir), "--source", filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AYUDAS_STORE_DRIVER", "memory")

	_, err := runCLI(t, "migrate", "--config", writeConfig(t, dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))
	return path
}
