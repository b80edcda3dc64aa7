package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/glossa/glossa/internal/core"
	"github.com/glossa/glossa/internal/db"
)

type view int

const (
	viewMenu view = iota
	viewInput
	viewLoading
	viewList
	viewResults
)

type inputMode int

const (
	inputTranslateTarget inputMode = iota
	inputTranslateText
	inputDetectText
	inputLookupWord
	inputLookupLanguage
	inputExportPath
)

var menuItems = []string{
	"Translate",
	"Detect language",
	"Look up word",
	"Recent lookups",
	"Export history",
	"Exit",
}

// resultMsg carries the outcome of an async processor call
type resultMsg struct {
	title string
	body  string
	err   error
}

type historyMsg struct {
	entries []db.DictionaryEntry
	err     error
}

type model struct {
	view      view
	cursor    int
	processor *core.Processor
	entries   []db.DictionaryEntry
	result    resultMsg
	err       error
	input     textinput.Model
	inputMode inputMode
	spinner   spinner.Model

	// values collected by the first step of two-step prompts
	target string
	word   string
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	normalStyle = lipgloss.NewStyle()

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func runTUI(processor *core.Processor) error {
	p := tea.NewProgram(newModel(processor))
	_, err := p.Run()
	return err
}

func newModel(processor *core.Processor) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		view:      viewMenu,
		processor: processor,
		input:     textinput.New(),
		spinner:   s,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.result = msg
		m.err = msg.err
		m.view = viewResults
		return m, nil

	case historyMsg:
		m.entries = msg.entries
		m.err = msg.err
		m.view = viewList
		return m, nil

	case spinner.TickMsg:
		if m.view != viewLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.view == viewMenu {
				return m, tea.Quit
			}
			return m.backToMenu(), nil

		case "q":
			if m.view == viewMenu {
				return m, tea.Quit
			}
			if m.view != viewInput {
				return m.backToMenu(), nil
			}

		case "up", "k":
			if m.view == viewMenu && m.cursor > 0 {
				m.cursor--
				return m, nil
			}

		case "down", "j":
			if m.view == viewMenu && m.cursor < len(menuItems)-1 {
				m.cursor++
				return m, nil
			}

		case "enter":
			switch m.view {
			case viewMenu:
				return m.handleMenuSelection()
			case viewInput:
				return m.handleInputSubmission()
			case viewResults, viewList:
				return m.backToMenu(), nil
			}
		}
	}

	// Handle text input when in input view
	if m.view == viewInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) backToMenu() model {
	m.view = viewMenu
	m.cursor = 0
	m.err = nil
	m.target = ""
	m.word = ""
	m.input.Reset()
	return m
}

func (m model) prompt(mode inputMode, placeholder string) (tea.Model, tea.Cmd) {
	m.view = viewInput
	m.inputMode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) loading(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.view = viewLoading
	m.err = nil
	m.input.Blur()
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m model) handleMenuSelection() (tea.Model, tea.Cmd) {
	switch menuItems[m.cursor] {
	case "Translate":
		return m.prompt(inputTranslateTarget, "Target language code (e.g. fr, vi, en)")
	case "Detect language":
		return m.prompt(inputDetectText, "Text to detect")
	case "Look up word":
		return m.prompt(inputLookupWord, "Word to look up")
	case "Recent lookups":
		return m.loading(m.historyCmd())
	case "Export history":
		return m.prompt(inputExportPath, "Export file path (default: dictionary_export.json)")
	case "Exit":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleInputSubmission() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.inputMode {
	case inputTranslateTarget:
		if value == "" {
			return m, nil
		}
		m.target = value
		return m.prompt(inputTranslateText, fmt.Sprintf("Text to translate to %s", core.LanguageName(value)))

	case inputTranslateText:
		return m.loading(m.translateCmd(value, m.target))

	case inputDetectText:
		return m.loading(m.detectCmd(value))

	case inputLookupWord:
		if value == "" {
			return m, nil
		}
		m.word = value
		return m.prompt(inputLookupLanguage, "Language code (default: en)")

	case inputLookupLanguage:
		if value == "" {
			value = "en"
		}
		return m.loading(m.lookupCmd(m.word, value))

	case inputExportPath:
		if value == "" {
			value = "dictionary_export.json"
		}
		return m.loading(m.exportCmd(value))
	}

	return m, nil
}

func (m model) translateCmd(text, target string) tea.Cmd {
	processor := m.processor
	return func() tea.Msg {
		result, err := processor.Translate(context.Background(), core.TranslationRequest{
			Text:           text,
			SourceLanguage: core.AutoDetect,
			TargetLanguage: target,
		})
		if err != nil {
			return resultMsg{title: "Translate", err: err}
		}
		return resultMsg{title: "Translation (" + core.LanguageName(target) + ")", body: result.TranslatedText}
	}
}

func (m model) detectCmd(text string) tea.Cmd {
	processor := m.processor
	return func() tea.Msg {
		code, err := processor.DetectLanguage(context.Background(), text)
		if err != nil {
			return resultMsg{title: "Detect language", err: err}
		}
		return resultMsg{title: "Detected language", body: fmt.Sprintf("%s (%s)", code, core.LanguageName(code))}
	}
}

func (m model) lookupCmd(word, language string) tea.Cmd {
	processor := m.processor
	return func() tea.Msg {
		entry, err := processor.LookupWord(context.Background(), word, language)
		if err != nil {
			return resultMsg{title: "Look up word", err: err}
		}
		return resultMsg{title: entryTitle(entry), body: entryBody(entry)}
	}
}

func (m model) historyCmd() tea.Cmd {
	processor := m.processor
	return func() tea.Msg {
		entries, err := processor.History(context.Background())
		return historyMsg{entries: entries, err: err}
	}
}

func (m model) exportCmd(path string) tea.Cmd {
	processor := m.processor
	return func() tea.Msg {
		format := core.ExportJSON
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			format = core.ExportYAML
		}

		file, err := os.Create(path)
		if err != nil {
			return resultMsg{title: "Export history", err: err}
		}
		err = processor.ExportEntries(context.Background(), file, format)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return resultMsg{title: "Export history", err: err}
		}
		return resultMsg{title: "Export history", body: "Exported dictionary to " + path}
	}
}

func entryTitle(entry *db.DictionaryEntry) string {
	if entry.PartOfSpeech == "" {
		return fmt.Sprintf("%s [%s]", entry.Word, entry.Language)
	}
	return fmt.Sprintf("%s (%s) [%s]", entry.Word, entry.PartOfSpeech, entry.Language)
}

func entryBody(entry *db.DictionaryEntry) string {
	body := entry.Definition
	if entry.Examples != "" {
		body += "\n\nExamples: " + entry.Examples
	}
	return body
}

func (m model) View() string {
	switch m.view {
	case viewMenu:
		return m.renderMenu()
	case viewInput:
		return m.renderInput()
	case viewLoading:
		return m.renderLoading()
	case viewList:
		return m.renderHistory()
	case viewResults:
		return m.renderResults()
	}
	return m.renderMenu()
}

func (m model) renderMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Glossa - Translator & Dictionary"))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if m.cursor == i {
			s.WriteString(selectedStyle.Render("> " + item))
		} else {
			s.WriteString(normalStyle.Render("  " + item))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n\n")
	s.WriteString("Use ↑/↓ arrows or j/k to navigate, Enter to select, q to quit")

	return menuStyle.Render(s.String())
}

func (m model) renderLoading() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Glossa - Translator & Dictionary"))
	s.WriteString("\n\n")
	s.WriteString(m.spinner.View())
	s.WriteString(" Working...")

	return menuStyle.Render(s.String())
}

func (m model) renderInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Glossa - Translator & Dictionary"))
	s.WriteString("\n\n")

	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString("Press Enter to submit, Ctrl+C to cancel")

	return menuStyle.Render(s.String())
}

func (m model) renderHistory() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Recent lookups"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if len(m.entries) == 0 {
		s.WriteString("No dictionary entries yet.\n")
	} else {
		for i, entry := range m.entries {
			s.WriteString(fmt.Sprintf("%d. %s (%s) ", i+1, entry.Word, entry.Language))
			s.WriteString(mutedStyle.Render(entry.Definition))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n\nPress Enter to return to menu")

	return menuStyle.Render(s.String())
}

func (m model) renderResults() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.result.title))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		s.WriteString(successStyle.Render(m.result.body))
	}

	s.WriteString("\n\nPress Enter to return to menu")

	return menuStyle.Render(s.String())
}
