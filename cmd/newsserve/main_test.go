package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataset = `{
  "news": [
    {"id": 1, "headline": "Cup final tonight", "category": "Sports", "topic": "Football", "releasedTime": 1560470400},
    {"id": 2, "headline": "Rocket reaches orbit", "category": "Space", "topic": "Rockets", "releasedTime": 1560556800}
  ],
  "browseRecords": [
    {"userId": 7, "newsId": 1, "startTs": 1560474000, "duration": 30},
    {"userId": 7, "newsId": 2, "startTs": 1560560400, "duration": 45}
  ]
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestImportThenRefresh(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nlevel = \"error\"\n"), 0o644))
	dsPath := filepath.Join(dir, "news.json")
	require.NoError(t, os.WriteFile(dsPath, []byte(testDataset), 0o644))
	dbPath := filepath.Join(dir, "news.db")

	out, err := execute(t, "--config", cfgPath, "--db", dbPath, "import", dsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 news, 2 browse records, 2 daily categories, 2 user interests")

	out, err = execute(t, "--config", cfgPath, "--db", dbPath, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "category  2 words")
	assert.Contains(t, out, "topic     2 words")
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "news.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,headline\n"), 0o644))

	_, err := execute(t, "--db", filepath.Join(dir, "news.db"), "import", path)
	assert.Error(t, err)
}
