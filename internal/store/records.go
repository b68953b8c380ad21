package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nhle/comtech-lite/internal/model"
)

// editJob runs fn on the stored job with the given id. fn reports
// whether it changed anything.
func (s *Store) editJob(ctx context.Context, op, id string, fn func(j *model.Job) bool) error {
	today := s.today()
	return s.mutate(ctx, op, func(st *State) bool {
		i := jobIndex(st.Jobs, id)
		if i < 0 || !fn(&st.Jobs[i]) {
			return false
		}
		st.Jobs[i].UpdatedAt = today
		return true
	})
}

// AddTodo appends a checklist entry to the job.
func (s *Store) AddTodo(ctx context.Context, jobID, text string) (model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, fmt.Errorf("todo text must not be empty")
	}
	if _, err := s.Job(jobID); err != nil {
		return model.Todo{}, fmt.Errorf("adding todo: %w", err)
	}

	todo := model.Todo{ID: model.NewID(), Text: text, CreatedAt: s.today()}
	err := s.editJob(ctx, "add_todo", jobID, func(j *model.Job) bool {
		j.Todos = append(j.Todos, todo)
		return true
	})
	if err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// ToggleTodo flips the done flag. Unknown ids are ignored.
func (s *Store) ToggleTodo(ctx context.Context, jobID, todoID string) error {
	return s.editJob(ctx, "toggle_todo", jobID, func(j *model.Job) bool {
		i := slices.IndexFunc(j.Todos, func(t model.Todo) bool { return t.ID == todoID })
		if i < 0 {
			return false
		}
		j.Todos[i].Done = !j.Todos[i].Done
		return true
	})
}

// RemoveTodo deletes a checklist entry. Unknown ids are ignored.
func (s *Store) RemoveTodo(ctx context.Context, jobID, todoID string) error {
	return s.editJob(ctx, "remove_todo", jobID, func(j *model.Job) bool {
		i := slices.IndexFunc(j.Todos, func(t model.Todo) bool { return t.ID == todoID })
		if i < 0 {
			return false
		}
		j.Todos = slices.Delete(j.Todos, i, i+1)
		return true
	})
}

// AddAttachment appends a to the job, assigning an id and date when
// missing. The payload is stored as given.
func (s *Store) AddAttachment(ctx context.Context, jobID string, a model.Attachment) (model.Attachment, error) {
	if _, err := s.Job(jobID); err != nil {
		return model.Attachment{}, fmt.Errorf("adding attachment: %w", err)
	}
	if a.ID == "" {
		a.ID = model.NewID()
	}
	if a.CreatedAt == "" {
		a.CreatedAt = s.today()
	}

	err := s.editJob(ctx, "add_attachment", jobID, func(j *model.Job) bool {
		j.Attachments = append(j.Attachments, a)
		return true
	})
	if err != nil {
		return model.Attachment{}, err
	}
	return a, nil
}

// RemoveAttachment deletes an attachment. Unknown ids are ignored.
func (s *Store) RemoveAttachment(ctx context.Context, jobID, attachmentID string) error {
	return s.editJob(ctx, "remove_attachment", jobID, func(j *model.Job) bool {
		i := slices.IndexFunc(j.Attachments, func(a model.Attachment) bool { return a.ID == attachmentID })
		if i < 0 {
			return false
		}
		j.Attachments = slices.Delete(j.Attachments, i, i+1)
		return true
	})
}
