package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/comtech-lite/internal/attach"
	"github.com/nhle/comtech-lite/internal/model"
)

// resultMsg is sent after a store action finishes.
type resultMsg struct {
	action string
	notice string
	err    error
}

func failed(action string, err error) resultMsg {
	return resultMsg{action: action, err: err}
}

// saveJob cleans, validates and stores a job from the form. An empty id
// adds it. Blank or non-positive service lines are dropped, not rejected.
func (m *Model) saveJob(id string, j model.Job) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		j.NumbersList = model.CleanNumbers(j.NumbersList)
		j.Services = model.CleanServiceLines(j.Services)
		j.Adjustments = model.CleanAdjustments(j.Adjustments)
		if err := model.ValidateNewJob(j); err != nil {
			return failed("save_job", err)
		}

		if id == "" {
			added, err := s.AddJob(ctx, j)
			if err != nil {
				return failed("add_job", err)
			}
			return resultMsg{action: "add_job", notice: "Added " + added.Customer}
		}

		err := s.UpdateJob(ctx, id, model.JobPatch{
			Customer:       &j.Customer,
			Site:           &j.Site,
			Reference:      &j.Reference,
			Address:        &j.Address,
			NumbersList:    &j.NumbersList,
			PrimaryNumber:  &j.PrimaryNumber,
			Status:         &j.Status,
			BillingContact: &j.BillingContact,
			SiteContact:    &j.SiteContact,
			Services:       &j.Services,
			Adjustments:    &j.Adjustments,
			Notes:          &j.Notes,
		})
		if err != nil {
			return failed("update_job", err)
		}
		return resultMsg{action: "update_job", notice: "Saved " + j.Customer}
	}
}

func (m *Model) removeJob(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.RemoveJob(context.Background(), id); err != nil {
			return failed("remove_job", err)
		}
		return resultMsg{action: "remove_job", notice: "Job deleted"}
	}
}

func (m *Model) moveJob(id string, stage model.Stage) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.MoveJob(context.Background(), id, stage); err != nil {
			return failed("move_job", err)
		}
		return resultMsg{action: "move_job", notice: "Moved to " + string(stage)}
	}
}

func (m *Model) addTodo(jobID, text string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if _, err := s.AddTodo(context.Background(), jobID, text); err != nil {
			return failed("add_todo", err)
		}
		return resultMsg{action: "add_todo", notice: "Todo added"}
	}
}

func (m *Model) toggleTodo(jobID, todoID string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.ToggleTodo(context.Background(), jobID, todoID); err != nil {
			return failed("toggle_todo", err)
		}
		return resultMsg{action: "toggle_todo"}
	}
}

func (m *Model) setAddress(jobID, address string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.UpdateJob(context.Background(), jobID, model.JobPatch{Address: &address})
		if err != nil {
			return failed("set_address", err)
		}
		return resultMsg{action: "set_address", notice: "Address saved"}
	}
}

// attachFile stores a file on the job. An .eml file contributes its
// attachments instead of itself.
func (m *Model) attachFile(jobID, path string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		path = expandHome(path)

		files, err := attach.FromPath(path)
		if err != nil {
			return failed("attach", err)
		}

		for _, a := range files {
			if _, err := s.AddAttachment(ctx, jobID, a); err != nil {
				return failed("attach", err)
			}
		}
		return resultMsg{action: "attach", notice: fmt.Sprintf("Attached %d file(s)", len(files))}
	}
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
