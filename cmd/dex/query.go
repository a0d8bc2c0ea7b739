package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/evodex/internal/dex"
)

func newShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record and its evolution tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id must be an integer: %q", args[0])
			}
			return runShow(cmd, configPath, id)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to evodex config file")
	return cmd
}

func runShow(cmd *cobra.Command, configPath string, id int) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	d, err := dex.NewService(gormDB).FindOne(context.Background(), id)
	if errors.Is(err, dex.ErrNotFound) {
		return fmt.Errorf("record %d not found", id)
	}
	if err != nil {
		return err
	}
	printDetail(cmd.OutOrStdout(), d)
	return nil
}

func newListCmd() *cobra.Command {
	var (
		configPath string
		generation int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			svc := dex.NewService(gormDB)
			var list []dex.Summary
			if generation > 0 {
				list, err = svc.FindByGeneration(context.Background(), generation)
			} else {
				list, err = svc.FindAll(context.Background())
			}
			if err != nil {
				return err
			}
			printSummaries(cmd, list, false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to evodex config file")
	cmd.Flags().IntVarP(&generation, "generation", "g", 0, "only records introduced in this generation")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		configPath  string
		generations []int
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search records by name within generations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := dex.SearchQuery{Generations: generations}
			if len(args) == 1 {
				q.Text = args[0]
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			list, err := dex.NewService(gormDB).Search(context.Background(), q)
			if err != nil {
				return err
			}
			printSummaries(cmd, list, true)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to evodex config file")
	cmd.Flags().IntSliceVarP(&generations, "generation", "g", nil, "generations to search (repeatable, default all)")
	return cmd
}

func printSummaries(cmd *cobra.Command, list []dex.Summary, withAttribute bool) {
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No records found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if withAttribute {
		fmt.Fprintln(w, "ID\tNAME\tTYPES")
	} else {
		fmt.Fprintln(w, "ID\tNAME")
	}
	for _, s := range list {
		if withAttribute {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.Attribute)
		} else {
			fmt.Fprintf(w, "%d\t%s\n", s.ID, s.Name)
		}
	}
	w.Flush()
	fmt.Fprintf(out, "\n%s records\n", formatCount(int64(len(list))))
}
