package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tsiatosika/Todo-project/client"
	"github.com/Tsiatosika/Todo-project/config"
	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/ui/listview"
	"github.com/Tsiatosika/Todo-project/ui/tui"
	"github.com/Tsiatosika/Todo-project/ui/viewstate"
)

type rootOptions struct {
	apiURL  string
	timeout time.Duration
}

// client builds an API client from flags, falling back to the environment.
func (o *rootOptions) client() (*client.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	return client.New(cfg.APIURL, cfg.Timeout), nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var optimistic bool

	cmd := &cobra.Command{
		Use:   "taskui",
		Short: "Terminal client for the task tracker",
		Long: `taskui manages tasks stored behind the task API.

Without a subcommand it opens an interactive list: n adds a task,
e edits, space toggles its status, d deletes, f and s cycle the
filter and sort, r refreshes and q quits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			var ctrlOpts []viewstate.Option
			if optimistic {
				ctrlOpts = append(ctrlOpts, viewstate.WithOptimisticDelete())
			}
			return tui.Run(viewstate.NewController(c, ctrlOpts...))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "task API address (default $TASKS_API_URL or http://localhost:3000)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (default $TASKS_API_TIMEOUT or 10s)")
	cmd.Flags().BoolVar(&optimistic, "optimistic-delete", false, "remove rows before the server confirms a delete")

	cmd.AddCommand(newListCmd(opts), newAddCmd(opts), newDeleteCmd(opts), newActivityCmd(opts))
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var filterName, sortName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := listview.ParseFilter(filterName)
			if err != nil {
				return err
			}
			sort, err := listview.ParseSort(sortName)
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}

			tasks, err := c.FetchAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching tasks: %w", err)
			}
			printView(cmd.OutOrStdout(), listview.Derive(tasks, filter, sort))
			return nil
		},
	}

	cmd.Flags().StringVar(&filterName, "filter", "all", "all, pending or done")
	cmd.Flags().StringVar(&sortName, "sort", "status", "status, name or createdAt")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var description string
	var done bool

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}

			status := task.StatusPending
			if done {
				status = task.StatusDone
			}
			created, err := c.Create(cmd.Context(), task.Fields{
				Name:        &args[0],
				Description: &description,
				Status:      &status,
			})
			if err != nil {
				return fmt.Errorf("creating task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().BoolVar(&done, "done", false, "create the task already done")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			removed, err := c.Remove(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("deleting task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %q\n", removed.ID, removed.Name)
			return nil
		},
	}
}

func newActivityCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Print recent task activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			entries, err := c.Activity(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("fetching activity: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No activity yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s\n", e.Timestamp.Local().Format(time.DateTime), e.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show (0 for all)")
	return cmd
}

func printView(w io.Writer, v listview.View) {
	fmt.Fprintf(w, "Total: %d  Pending: %d  Done: %d\n", v.Counts.Total, v.Counts.Pending, v.Counts.Done)
	if v.Empty != listview.EmptyNone {
		fmt.Fprintln(w, v.Empty.Message())
		return
	}
	for _, t := range v.Rows {
		box := "[ ]"
		if t.Status == task.StatusDone {
			box = "[x]"
		}
		fmt.Fprintf(w, "%s %s  %s\n", box, t.Name, t.ID)
	}
}

// executeContext runs the root command with args; used by tests.
func executeContext(ctx context.Context, out io.Writer, args ...string) error {
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
