package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/catalogue"
	"github.com/spf13/cobra"
)

func writeMatches(w io.Writer, matches []catalogue.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches")
		return
	}
	for _, match := range matches {
		fmt.Fprintf(w, "%v\t%v\t(%v sections)\n", match.Id, match.Name, len(match.Sections))
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	cat, err := catalogue.Load(cataloguePath)
	if err != nil {
		return err
	}
	writeMatches(cmd.OutOrStdout(), cat.Search(strings.Join(args, " "), searchLimit))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	current, _, _, err := newSession()
	if err != nil {
		return err
	}
	if err := applyArguments(current, eventArgs, excludeArgs); err != nil {
		return err
	}

	scheduler, err := current.Scheduler()
	if err != nil {
		return err
	}
	scheduler.BuildConflicts()
	return scheduler.Display(cmd.OutOrStdout())
}
