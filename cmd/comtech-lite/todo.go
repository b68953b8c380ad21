package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/model"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage a job's checklist",
}

var todoAddCmd = &cobra.Command{
	Use:   "add <job-id> <text>",
	Short: "Add a todo to a job",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTodoAdd,
}

var todoToggleCmd = &cobra.Command{
	Use:   "toggle <job-id> <todo-id>",
	Short: "Flip a todo between open and done",
	Args:  cobra.ExactArgs(2),
	RunE:  runTodoToggle,
}

var todoRemoveCmd = &cobra.Command{
	Use:   "rm <job-id> <todo-id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(2),
	RunE:  runTodoRemove,
}

func init() {
	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoToggleCmd)
	todoCmd.AddCommand(todoRemoveCmd)
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return fmt.Errorf("todo text is required")
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := resolveJob(s, args[0])
	if err != nil {
		return err
	}
	td, err := s.AddTodo(ctx, j.ID, text)
	if err != nil {
		return fmt.Errorf("add todo: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), td)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added todo %s to %s\n", shortID(td.ID), j.Customer)
	return nil
}

func runTodoToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := resolveJob(s, args[0])
	if err != nil {
		return err
	}
	td, err := resolveTodo(j, args[1])
	if err != nil {
		return err
	}
	if err := s.ToggleTodo(ctx, j.ID, td.ID); err != nil {
		return fmt.Errorf("toggle todo: %w", err)
	}

	td.Done = !td.Done
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), td)
	}
	state := "open"
	if td.Done {
		state = "done"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", td.Text, state)
	return nil
}

func runTodoRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := resolveJob(s, args[0])
	if err != nil {
		return err
	}
	td, err := resolveTodo(j, args[1])
	if err != nil {
		return err
	}
	if err := s.RemoveTodo(ctx, j.ID, td.ID); err != nil {
		return fmt.Errorf("remove todo: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": true, "id": td.ID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo %s\n", td.Text)
	return nil
}

func resolveTodo(j model.Job, ref string) (model.Todo, error) {
	var found []model.Todo
	for _, td := range j.Todos {
		if td.ID == ref {
			return td, nil
		}
		if strings.HasPrefix(td.ID, ref) {
			found = append(found, td)
		}
	}
	switch len(found) {
	case 0:
		return model.Todo{}, fmt.Errorf("todo %q not found on %s", ref, j.Customer)
	case 1:
		return found[0], nil
	default:
		return model.Todo{}, fmt.Errorf("todo id %q is ambiguous (%d matches)", ref, len(found))
	}
}
