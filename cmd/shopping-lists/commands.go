package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shopping-lists/internal/clipper"
	"shopping-lists/internal/shopping"
)

func supermarketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "supermarket",
		Aliases: []string{"supermercado"},
		Short:   "Manage supermarkets",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a supermarket",
			Args:  cobra.MinimumNArgs(1),
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				m, err := e.app.AddSupermarket(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, m.Name)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List supermarkets",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				for _, m := range e.app.Supermarkets() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, m.Name)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a supermarket without lists",
			Args:  cobra.ExactArgs(1),
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				return e.app.RemoveSupermarket(cmd.Context(), args[0])
			}),
		},
	)
	return cmd
}

// resolveSupermarket returns id, or the first supermarket when id is empty.
func resolveSupermarket(e *env, id string) (shopping.Supermarket, error) {
	markets := e.app.Supermarkets()
	if id == "" {
		if len(markets) == 0 {
			return shopping.Supermarket{}, shopping.ErrNoSupermarket
		}
		return markets[0], nil
	}
	m, ok := shopping.FindSupermarket(markets, id)
	if !ok {
		return shopping.Supermarket{}, fmt.Errorf("supermarket %s not found", id)
	}
	return m, nil
}

func requireList(e *env, id string) error {
	if _, ok := e.app.List(id); !ok {
		return fmt.Errorf("list %s not found", id)
	}
	return nil
}

func printList(cmd *cobra.Command, l shopping.ShoppingList) {
	out := cmd.OutOrStdout()
	shared := ""
	if l.Shared {
		shared = " (shared)"
	}
	fmt.Fprintf(out, "%s\t%s%s\t%d/%d pending\n", l.ID, l.Name, shared, l.Pending(), len(l.Items))
	for _, it := range l.Items {
		box := "[ ]"
		if it.Completed {
			box = "[x]"
		}
		fmt.Fprintf(out, "  %s %s\t%s\n", box, it.Name, it.ID)
	}
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"lista"},
		Short:   "Manage shopping lists",
	}

	var addMarket string
	var items []string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a list in a supermarket",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			m, err := resolveSupermarket(e, addMarket)
			if err != nil {
				return err
			}
			l, err := e.app.ImportList(cmd.Context(), strings.Join(args, " "), m.ID, items)
			if err != nil {
				return err
			}
			printList(cmd, l)
			return nil
		}),
	}
	add.Flags().StringVarP(&addMarket, "supermarket", "s", "", "Supermarket id (defaults to the first one)")
	add.Flags().StringSliceVar(&items, "items", nil, "Comma-separated items to start with")

	var showMarket string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the lists of a supermarket",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			m, err := resolveSupermarket(e, showMarket)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", m.Name)
			for _, l := range e.app.FilteredLists(m.ID) {
				printList(cmd, l)
			}
			return nil
		}),
	}
	show.Flags().StringVarP(&showMarket, "supermarket", "s", "", "Supermarket id (defaults to the first one)")

	var importMarket, importName string
	imp := &cobra.Command{
		Use:   "import <url>",
		Short: "Create a list from the ingredients of a web page",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			m, err := resolveSupermarket(e, importMarket)
			if err != nil {
				return err
			}
			// The CLI acts for the local user, so pages on the local network
			// may be imported. The HTTP server keeps the public-only client.
			c := clipper.NewClipper(&http.Client{Timeout: 15 * time.Second})
			clipped, err := c.ClipURL(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}
			l, err := e.app.ImportList(cmd.Context(), clipped.ListName(importName), m.ID, clipped.Items)
			if err != nil {
				return err
			}
			printList(cmd, l)
			return nil
		}),
	}
	imp.Flags().StringVarP(&importMarket, "supermarket", "s", "", "Supermarket id (defaults to the first one)")
	imp.Flags().StringVarP(&importName, "name", "n", "", "List name (defaults to the page title)")

	cmd.AddCommand(add, show, imp)
	return cmd
}

func itemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the items of a list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <list-id> <name>",
			Short: "Add an item",
			Args:  cobra.MinimumNArgs(2),
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				if err := requireList(e, args[0]); err != nil {
					return err
				}
				return e.app.AddItem(cmd.Context(), args[0], strings.Join(args[1:], " "))
			}),
		},
		&cobra.Command{
			Use:   "toggle <list-id> <item-id>",
			Short: "Mark an item as bought or pending",
			Args:  cobra.ExactArgs(2),
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				if err := requireList(e, args[0]); err != nil {
					return err
				}
				return e.app.ToggleItem(cmd.Context(), args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "remove <list-id> <item-id>",
			Short: "Remove an item",
			Args:  cobra.ExactArgs(2),
			RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
				if err := requireList(e, args[0]); err != nil {
					return err
				}
				return e.app.RemoveItem(cmd.Context(), args[0], args[1])
			}),
		},
	)
	return cmd
}

func shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <list-id>",
		Short: "Toggle sharing of a list and print its link",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := requireList(e, args[0]); err != nil {
				return err
			}
			if err := e.app.ToggleSharing(cmd.Context(), args[0]); err != nil {
				return err
			}
			l, _ := e.app.List(args[0])
			if !l.Shared {
				fmt.Fprintln(cmd.OutOrStdout(), "sharing disabled")
				return nil
			}
			link, err := shopping.ShareURL(e.cfg.ShareBaseURL, l, e.signer())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		}),
	}
}

func metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Assistant usage metrics (sqlite backend only)",
	}

	var usageDays int
	usage := &cobra.Command{
		Use:   "usage",
		Short: "Show requests per day and intent",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if e.metrics == nil {
				return fmt.Errorf("metrics need the sqlite backend")
			}
			rows, err := e.metrics.GetDailyUsage(usageDays)
			if err != nil {
				return err
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%dms\n", r.Date, r.Intent, r.Count, r.AvgLatencyMS)
			}
			return nil
		}),
	}
	usage.Flags().IntVar(&usageDays, "days", 7, "Days to look back")

	var cleanupDays int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old interactions",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if e.metrics == nil {
				return fmt.Errorf("metrics need the sqlite backend")
			}
			n, err := e.metrics.Cleanup(cleanupDays)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d interactions\n", n)
			return nil
		}),
	}
	cleanup.Flags().IntVar(&cleanupDays, "days", 30, "Keep interactions newer than this many days")

	cmd.AddCommand(usage, cleanup)
	return cmd
}
