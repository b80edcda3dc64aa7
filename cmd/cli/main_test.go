package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossa/glossa/internal/core"
	"github.com/glossa/glossa/internal/db"
)

// setupConfig points the commands at a fresh SQLite file seeded with entries
func setupConfig(t *testing.T, entries ...db.DictionaryEntry) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "glossa.db")

	database, err := db.NewDatabase(dbPath)
	require.NoError(t, err)
	for i := range entries {
		_, _, err := database.SaveEntry(context.Background(), &entries[i])
		require.NoError(t, err)
	}
	require.NoError(t, database.Close())

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  driver: sqlite3\n  path: "+dbPath+"\nlog:\n  level: error\n"), 0o600))

	oldConfigFile := configFile
	oldNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		configFile = oldConfigFile
		color.NoColor = oldNoColor
	})
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "glossa", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	for _, name := range []string{"translate", "detect", "define", "history", "export"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestNewTranslateCommand(t *testing.T) {
	cmd := newTranslateCommand()

	fromFlag := cmd.Flags().Lookup("from")
	require.NotNil(t, fromFlag)
	assert.Equal(t, core.AutoDetect, fromFlag.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("to"))
}

func TestTranslateCommand_RequiresTarget(t *testing.T) {
	_, err := execute(t, "translate", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--to is required")
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	_, err := execute(t, "export", "--format", "csv")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestHistoryCommand(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		cfgPath := setupConfig(t)

		out, err := execute(t, "--config", cfgPath, "history")
		require.NoError(t, err)
		assert.Contains(t, out, "No dictionary entries yet.")
	})

	t.Run("newest first", func(t *testing.T) {
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		cfgPath := setupConfig(t,
			db.DictionaryEntry{Word: "hello", Language: "en", Definition: "a greeting", CreatedAt: base},
			db.DictionaryEntry{Word: "chat", Language: "fr", Definition: "cat", CreatedAt: base.Add(time.Minute)},
		)

		out, err := execute(t, "--config", cfgPath, "history")
		require.NoError(t, err)
		assert.Less(t, bytes.Index([]byte(out), []byte("chat")), bytes.Index([]byte(out), []byte("hello")))
		assert.Contains(t, out, "a greeting")
	})
}

func TestDefineCommand_CacheHit(t *testing.T) {
	cfgPath := setupConfig(t, db.DictionaryEntry{
		Word:         "run",
		Language:     "en",
		Definition:   "to move fast on foot",
		PartOfSpeech: "verb",
		Examples:     "He can run fast.",
		CreatedAt:    time.Now().UTC(),
	})

	out, err := execute(t, "--config", cfgPath, "define", "--lang", "en", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "run (verb) [en]")
	assert.Contains(t, out, "to move fast on foot")
	assert.Contains(t, out, "Examples: He can run fast.")
}

func TestExportCommand_File(t *testing.T) {
	cfgPath := setupConfig(t, db.DictionaryEntry{
		Word: "hello", Language: "en", Definition: "a greeting", CreatedAt: time.Now().UTC(),
	})
	output := filepath.Join(t.TempDir(), "export.json")

	_, err := execute(t, "--config", cfgPath, "export", "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var entries []db.DictionaryEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Word)
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)
	assert.Equal(t, 0, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)
	assert.Equal(t, 0, m.cursor)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	assert.Equal(t, viewInput, m.view)
	assert.Equal(t, inputTranslateTarget, m.inputMode)
	assert.NotNil(t, cmd)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(model)
	assert.Equal(t, viewMenu, m.view)
}

func TestModel_RecentLookups(t *testing.T) {
	database, err := db.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, _, err = database.SaveEntry(context.Background(), &db.DictionaryEntry{
		Word: "hello", Language: "en", Definition: "a greeting", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	m := newModel(core.NewProcessor(database, nil, "", 0))
	m.cursor = 3

	next, cmd := m.handleMenuSelection()
	m = next.(model)
	assert.Equal(t, viewLoading, m.view)
	require.NotNil(t, cmd)

	msg := m.historyCmd()()
	next, _ = m.Update(msg)
	m = next.(model)
	assert.Equal(t, viewList, m.view)
	require.Len(t, m.entries, 1)
	assert.Contains(t, m.View(), "hello")
}

func TestModel_ResultView(t *testing.T) {
	m := newModel(nil)

	next, _ := m.Update(resultMsg{title: "Translation (French)", body: "bonjour"})
	m = next.(model)

	assert.Equal(t, viewResults, m.view)
	assert.Contains(t, m.View(), "bonjour")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, viewMenu, next.(model).view)
}
