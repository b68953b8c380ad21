package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/comtech-lite/internal/csvcodec"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/ui/command"
)

// executeCommand runs a parsed palette command.
func (m Model) executeCommand(c command.CommandMsg) (tea.Model, tea.Cmd) {
	switch c.Name {
	case "board":
		m.listView, m.currentView = ViewBoard, ViewBoard
	case "table":
		m.listView, m.currentView = ViewTable, ViewTable
	case "prices":
		m.previousView = m.currentView
		m.currentView = ViewPriceBook
	case "settings":
		m.previousView = m.currentView
		m.currentView = ViewSettings
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
	case "quit":
		m.watcher.Stop()
		return m, tea.Quit
	case "export":
		return m, m.exportCSV(c.Arg)
	case "import":
		return m, m.importCSV(c.Arg)
	case "seed":
		return m, m.seedPriceBook()
	case "clear":
		return m, m.clearJobs()
	case "stage":
		if strings.EqualFold(c.Arg, "all") {
			m.filter.Stage = ""
		} else if st, ok := model.ParseStage(c.Arg); ok {
			m.filter.Stage = st
		} else {
			m.notice = fmt.Sprintf("Error: unknown stage %q", c.Arg)
			return m, nil
		}
		m.refresh(m.state)
	}
	return m, nil
}

func (m Model) exportCSV(path string) tea.Cmd {
	s := m.store
	if path == "" {
		path = filepath.Join(m.exportDir, csvcodec.FileName(m.now()))
	}
	path = expandHome(path)
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return failed("export", fmt.Errorf("creating %s: %w", path, err))
		}
		if err := s.ExportCSV(f); err != nil {
			f.Close()
			return failed("export", err)
		}
		if err := f.Close(); err != nil {
			return failed("export", err)
		}
		return resultMsg{action: "export", notice: fmt.Sprintf("Exported %d jobs to %s", len(s.Jobs()), path)}
	}
}

func (m Model) importCSV(path string) tea.Cmd {
	s := m.store
	path = expandHome(path)
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return failed("import", fmt.Errorf("opening %s: %w", path, err))
		}
		defer f.Close()

		n, err := s.ImportCSV(context.Background(), f)
		if err != nil {
			return failed("import", err)
		}
		return resultMsg{action: "import", notice: fmt.Sprintf("Imported %d jobs", n)}
	}
}

func (m Model) seedPriceBook() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.SeedPriceBookKNGJuly2025(context.Background()); err != nil {
			return failed("seed", err)
		}
		return resultMsg{action: "seed", notice: "Loaded KNG July 2025 price book"}
	}
}

func (m Model) clearJobs() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.ClearAll(context.Background()); err != nil {
			return failed("clear", err)
		}
		return resultMsg{action: "clear", notice: "All jobs cleared"}
	}
}
