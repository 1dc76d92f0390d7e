package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Makepad-fr/tada-remote/internal/api"
	"github.com/Makepad-fr/tada-remote/internal/model"
	"github.com/Makepad-fr/tada-remote/internal/ui"
)

func (a *app) lsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items with progress and undo availability",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				items []model.Item
				last  model.LastAction
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				items, err = a.client.Items(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				last, err = a.client.LastAction(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("ls: %w", err)
			}

			t := a.theme()
			d, p := model.Stats(items)
			lines := []string{
				ui.Header(t, items),
				t.Muted.Render(ui.ProgressBar(d, d+p, 28)),
				"",
			}
			if a.group {
				lines = append(lines, ui.GroupLines(t, items)...)
			} else {
				lines = append(lines, ui.FlatLines(t, items)...)
			}
			lines = append(lines, "")
			if last.Undoable() {
				lines = append(lines, t.Accent.Render("undo: "+last.Kind()))
			} else {
				lines = append(lines, t.Muted.Render("undo: nothing to undo"))
			}
			lines = append(lines, t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(t, lines))
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.group, "group", false, "group output by pending/done")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <task...>",
		Short: "Add a task (multiple words are joined)",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.Join(args, " ")
			if err := a.client.Add(cmd.Context(), task); err != nil {
				if errors.Is(err, api.ErrEmptyTask) {
					return usageError{fmt.Errorf("add: %w", err)}
				}
				return fmt.Errorf("add: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "added")
			return nil
		},
	}
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle done for the item at a 1-based index",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.itemAt(cmd, "done", args[0])
			if err != nil {
				return err
			}
			if err := a.client.Update(cmd.Context(), it.ID, !it.Done); err != nil {
				return vanished("done", it, err)
			}
			if it.Done {
				ui.OK(cmd.OutOrStdout(), "reopened: "+it.Task)
			} else {
				ui.OK(cmd.OutOrStdout(), "done: "+it.Task)
			}
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"delete"},
		Short:   "Remove the item at a 1-based index",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.itemAt(cmd, "rm", args[0])
			if err != nil {
				return err
			}
			if err := a.client.Delete(cmd.Context(), it.ID); err != nil {
				return vanished("rm", it, err)
			}
			ui.OK(cmd.OutOrStdout(), "removed: "+it.Task)
			return nil
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.client.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			if !res.OK() {
				return fmt.Errorf("clear: server answered %q", res.Status)
			}
			ui.OK(cmd.OutOrStdout(), "cleared")
			return nil
		},
	}
}

func (a *app) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last action on the server",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.client.Undo(cmd.Context())
			if err != nil {
				return fmt.Errorf("undo: %w", err)
			}
			out := cmd.OutOrStdout()
			switch {
			case res.NoAction():
				fmt.Fprintln(out, a.theme().Muted.Render("nothing to undo"))
			case res.OK():
				msg := "undone"
				if items := res.Items(); items != nil {
					msg = fmt.Sprintf("undone, %d items", len(items))
				}
				ui.OK(out, msg)
			default:
				return fmt.Errorf("undo: server answered %q", res.Status)
			}
			return nil
		},
	}
}

// vanished explains a 404 on an item the list showed a moment ago.
func vanished(name string, it model.Item, err error) error {
	if api.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%s: %q is no longer on the server, run `tada ls` again: %w", name, it.Task, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// itemAt resolves a 1-based index against the current server list.
func (a *app) itemAt(cmd *cobra.Command, name, arg string) (model.Item, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return model.Item{}, usagef("%s: not a number: %s", name, arg)
	}
	items, err := a.client.Items(cmd.Context())
	if err != nil {
		return model.Item{}, fmt.Errorf("%s: %w", name, err)
	}
	if n < 1 || n > len(items) {
		a.log.Debug("index out of range", zap.Int("index", n), zap.Int("len", len(items)))
		return model.Item{}, usagef("index out of range: have %d, got %d (run `tada ls` to see valid indexes)", len(items), n)
	}
	return items[n-1], nil
}
