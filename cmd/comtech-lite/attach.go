package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/attach"
	"github.com/nhle/comtech-lite/internal/credential"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/store"
)

var (
	mailDays  int
	mailLimit int
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Manage job attachments",
}

var attachFileCmd = &cobra.Command{
	Use:   "file <job-id> <path>...",
	Short: "Attach files to a job",
	Long:  "Attach files to a job. An .eml file contributes the attachments of that message.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAttachFile,
}

var attachListCmd = &cobra.Command{
	Use:   "list <job-id>",
	Short: "List a job's attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttachList,
}

var attachSaveCmd = &cobra.Command{
	Use:   "save <job-id> <attachment-id> [path]",
	Short: "Write an attachment to disk",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runAttachSave,
}

var attachRemoveCmd = &cobra.Command{
	Use:     "rm <job-id> <attachment-id>",
	Aliases: []string{"delete"},
	Short:   "Delete an attachment",
	Args:    cobra.ExactArgs(2),
	RunE:    runAttachRemove,
}

var attachMailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Pull attachments from the configured IMAP mailbox",
}

var attachMailListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent messages",
	Args:  cobra.NoArgs,
	RunE:  runAttachMailList,
}

var attachMailFetchCmd = &cobra.Command{
	Use:   "fetch <job-id> <uid>",
	Short: "Attach every attachment of a message to a job",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttachMailFetch,
}

func init() {
	attachMailListCmd.Flags().IntVar(&mailDays, "days", 14, "Only messages received in the last N days")
	attachMailListCmd.Flags().IntVar(&mailLimit, "limit", 25, "Maximum messages to list (0 for all)")

	attachMailCmd.AddCommand(attachMailListCmd)
	attachMailCmd.AddCommand(attachMailFetchCmd)

	attachCmd.AddCommand(attachFileCmd)
	attachCmd.AddCommand(attachListCmd)
	attachCmd.AddCommand(attachSaveCmd)
	attachCmd.AddCommand(attachRemoveCmd)
	attachCmd.AddCommand(attachMailCmd)
}

func runAttachFile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var files []model.Attachment
	for _, path := range args[1:] {
		got, err := attach.FromPath(path)
		if err != nil {
			return err
		}
		files = append(files, got...)
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
	added, err := addAttachments(cmd, s, j, files)
	if err != nil {
		return err
	}
	return reportAttached(cmd, j, added)
}

func runAttachList(cmd *cobra.Command, args []string) error {
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

	if jsonOutput {
		items := make([]map[string]any, len(j.Attachments))
		for i, a := range j.Attachments {
			items[i] = attachmentJSON(a)
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"attachments": items,
			"total":       len(items),
		})
	}

	if len(j.Attachments) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No attachments.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tADDED")
	for _, a := range j.Attachments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", shortID(a.ID), a.Name, a.Type, a.Size, dash(a.CreatedAt))
	}
	return w.Flush()
}

func runAttachSave(cmd *cobra.Command, args []string) error {
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
	a, err := resolveAttachment(j, args[1])
	if err != nil {
		return err
	}
	data, err := attach.Decode(a)
	if err != nil {
		return err
	}

	path := filepath.Base(a.Name)
	if len(args) == 3 {
		path = args[2]
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, filepath.Base(a.Name))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "size": len(data)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(data))
	return nil
}

func runAttachRemove(cmd *cobra.Command, args []string) error {
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
	a, err := resolveAttachment(j, args[1])
	if err != nil {
		return err
	}
	if err := s.RemoveAttachment(ctx, j.ID, a.ID); err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": true, "id": a.ID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", a.Name)
	return nil
}

func runAttachMailList(cmd *cobra.Command, args []string) error {
	mb, err := mailbox()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	envs, err := mb.Recent(ctx, mailDays, mailLimit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"messages": envs, "total": len(envs)})
	}
	if len(envs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recent messages.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "UID\tDATE\tFROM\tSUBJECT")
	for _, e := range envs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.UID, e.Date.Format("2006-01-02 15:04"), dash(e.From), dash(e.Subject))
	}
	return w.Flush()
}

func runAttachMailFetch(cmd *cobra.Command, args []string) error {
	uid, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid uid %q", args[1])
	}

	mb, err := mailbox()
	if err != nil {
		return err
	}

	fetchCtx, cancel := withTimeout(cmd.Context())
	defer cancel()
	files, err := mb.FetchAttachments(fetchCtx, uint32(uid))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("message %d has no attachments", uid)
	}

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
	added, err := addAttachments(cmd, s, j, files)
	if err != nil {
		return err
	}
	return reportAttached(cmd, j, added)
}

// mailbox builds the IMAP client from config and the stored password.
func mailbox() (*attach.Mailbox, error) {
	if strings.TrimSpace(cfg.Mail.Host) == "" {
		return nil, fmt.Errorf("mailbox not configured: set mail.host in %s", configPath)
	}
	password, err := credential.Lookup(openVault(), envIMAPPassword, credential.IMAPPassword)
	if err != nil {
		return nil, fmt.Errorf("mailbox password: %w", err)
	}
	return attach.NewMailbox(cfg.Mail, password), nil
}

func addAttachments(cmd *cobra.Command, s *store.Store, j model.Job, files []model.Attachment) ([]model.Attachment, error) {
	added := make([]model.Attachment, 0, len(files))
	for _, a := range files {
		got, err := s.AddAttachment(cmd.Context(), j.ID, a)
		if err != nil {
			return added, fmt.Errorf("attach %s: %w", a.Name, err)
		}
		added = append(added, got)
	}
	return added, nil
}

func reportAttached(cmd *cobra.Command, j model.Job, added []model.Attachment) error {
	if jsonOutput {
		items := make([]map[string]any, len(added))
		for i, a := range added {
			items[i] = attachmentJSON(a)
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"job":         j.ID,
			"attachments": items,
		})
	}
	for _, a := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "Attached %s (%d bytes) to %s\n", a.Name, a.Size, j.Customer)
	}
	return nil
}

func resolveAttachment(j model.Job, ref string) (model.Attachment, error) {
	var found []model.Attachment
	for _, a := range j.Attachments {
		if a.ID == ref {
			return a, nil
		}
		if strings.HasPrefix(a.ID, ref) || a.Name == ref {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return model.Attachment{}, fmt.Errorf("attachment %q not found on %s", ref, j.Customer)
	case 1:
		return found[0], nil
	default:
		return model.Attachment{}, fmt.Errorf("attachment %q is ambiguous (%d matches)", ref, len(found))
	}
}

// attachmentJSON omits the payload.
func attachmentJSON(a model.Attachment) map[string]any {
	return map[string]any{
		"id":         a.ID,
		"name":       a.Name,
		"type":       a.Type,
		"size":       a.Size,
		"created_at": a.CreatedAt,
	}
}
