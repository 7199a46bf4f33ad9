package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/spf13/cobra"
)

func newStateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or edit the stack to message index",
	}

	cmd.AddCommand(
		newStateShowCmd(opts),
		newStatePruneCmd(opts),
	)

	return cmd
}

func newStateShowCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the tracked message of every stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd, opts, 0)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			store, err := app.messageStore(cmd.Context())
			if err != nil {
				return err
			}
			index := store.Snapshot()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(index)
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "state: %s (%d messages)\n", store.Location(), len(index)); err != nil {
				return err
			}
			for _, stackID := range sortedStackIDs(index) {
				if _, err := fmt.Fprintf(out, "%s\t%s\n", stackID, index[stackID]); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the index as JSON")
	return cmd
}

func newStatePruneCmd(opts *rootOptions) *cobra.Command {
	var (
		keep []string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Forget tracked messages, keeping only the given stack ids",
		Long:  "Forget tracked messages. Stacks that are forgotten get a new message on the next cycle; the old message stays in the channel.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(keep) == 0 && !all {
				return errors.New("pass --keep <stack-id> to keep stacks, or --all to forget every message")
			}

			app, err := openApp(cmd, opts, 0)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			store, err := app.editableMessageStore(cmd.Context())
			if err != nil {
				return err
			}

			keepSet := make(map[domain.StackID]struct{}, len(keep))
			for _, id := range keep {
				keepSet[domain.StackID(id)] = struct{}{}
			}

			removed := store.Retain(keepSet)
			if err := store.Flush(cmd.Context()); err != nil {
				return err
			}

			sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries: %v\n", len(removed), removed)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&keep, "keep", nil, "Stack id to keep (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Forget every tracked message")
	cmd.MarkFlagsMutuallyExclusive("keep", "all")
	return cmd
}

func sortedStackIDs(index domain.MessageIndex) []domain.StackID {
	ids := make([]domain.StackID, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

