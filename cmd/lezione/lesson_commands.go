package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lezione/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "add <youtube-url>",
		Short: "Enqueue a YouTube video for lesson generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LessonAdd(args[0], force)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Existing {
					fmt.Fprintf(stdout, "Lesson %d already completed for video %s (use --force to regenerate)\n",
						resp.Lesson.ID, resp.Lesson.VideoID)
					return nil
				}
				fmt.Fprintf(stdout, "Lesson %d enqueued for video %s\n", resp.Lesson.ID, resp.Lesson.VideoID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even if a completed lesson exists")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lessons",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LessonList(statuses)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Lessons) == 0 {
					fmt.Fprintln(stdout, "No lessons found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Lessons))
				for _, l := range resp.Lessons {
					words := ""
					if l.WordCount > 0 {
						words = strconv.Itoa(l.WordCount)
					}
					rows = append(rows, []string{
						strconv.FormatInt(l.ID, 10),
						l.VideoID,
						l.Status,
						l.LanguageCode,
						words,
						l.UpdatedAt,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "VIDEO", "STATUS", "LANG", "WORDS", "UPDATED"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var markdownOnly bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a lesson and its generated sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lesson id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LessonShow(id)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if markdownOnly {
					if resp.Markdown == "" {
						return fmt.Errorf("lesson %d has no generated sheet yet", id)
					}
					fmt.Fprint(stdout, resp.Markdown)
					return nil
				}
				l := resp.Lesson
				fmt.Fprintf(stdout, "Lesson %d\n", l.ID)
				fmt.Fprintf(stdout, "  Video:    %s\n", l.VideoID)
				fmt.Fprintf(stdout, "  URL:      %s\n", l.SourceURL)
				fmt.Fprintf(stdout, "  Status:   %s\n", l.Status)
				if l.Language != "" {
					fmt.Fprintf(stdout, "  Language: %s (%s)\n", l.Language, l.LanguageCode)
				}
				if l.WordCount > 0 {
					fmt.Fprintf(stdout, "  Words:    %d\n", l.WordCount)
				}
				if l.Progress != "" {
					fmt.Fprintf(stdout, "  Progress: %s\n", l.Progress)
				}
				if l.Error != "" {
					fmt.Fprintf(stdout, "  Error:    %s\n", l.Error)
				}
				if resp.Markdown != "" {
					fmt.Fprintln(stdout)
					fmt.Fprintln(stdout, resp.Markdown)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&markdownOnly, "markdown", false, "Print only the generated Markdown sheet")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a lesson sheet to a Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lesson id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LessonShow(id)
				if err != nil {
					return err
				}
				if resp.Lesson.Status != "completed" || resp.Markdown == "" {
					return fmt.Errorf("lesson %d is not completed (status %s)", id, resp.Lesson.Status)
				}

				target := strings.TrimSpace(outputPath)
				defaultName := fmt.Sprintf("lezione_%s.md", resp.Lesson.VideoID)
				switch {
				case target == "":
					target = defaultName
				default:
					if info, err := os.Stat(target); err == nil && info.IsDir() {
						target = filepath.Join(target, defaultName)
					}
				}
				if err := os.WriteFile(target, []byte(resp.Markdown), 0o644); err != nil {
					return fmt.Errorf("write lesson sheet: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file or directory")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Re-queue a failed lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lesson id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.LessonRetry(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Lesson %d re-queued\n", id)
				return nil
			})
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove lessons from the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LessonClear(statuses)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d lessons\n", resp.Removed)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Limit removal to the given statuses (repeatable)")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				return nil
			})
		},
	}
}
