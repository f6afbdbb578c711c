package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/interval"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errMalformedArgument = errors.New("malformed argument")

// Parses "ID" or "ID:WEIGHT"; the weight defaults to session.DefaultWeight
func parseSelection(argument string) (uint64, float64, error) {
	idStr, weightStr, hasWeight := strings.Cut(strings.TrimSpace(argument), ":")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: entry id %q", errMalformedArgument, idStr)
	}
	if !hasWeight {
		return id, session.DefaultWeight, nil
	}
	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil || math.IsNaN(weight) || weight <= 0 || weight > session.MaxWeight {
		return 0, 0, fmt.Errorf("%w: weight %q must be a positive number up to %v", errMalformedArgument, weightStr, session.MaxWeight)
	}
	return id, weight, nil
}

// Parses "START-END" into a half-open window
func parseWindow(argument string) (interval.Interval, error) {
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(argument), "-")
	if !ok {
		return interval.Interval{}, fmt.Errorf("%w: window %q must look like START-END", errMalformedArgument, argument)
	}
	start, startErr := strconv.ParseFloat(startStr, 64)
	end, endErr := strconv.ParseFloat(endStr, 64)
	if startErr != nil || endErr != nil {
		return interval.Interval{}, fmt.Errorf("%w: window %q must look like START-END", errMalformedArgument, argument)
	}
	return interval.Interval{Start: start, End: end}, nil
}

func applyArguments(current *session.Session, selections, windows []string) error {
	for _, argument := range selections {
		id, weight, err := parseSelection(argument)
		if err != nil {
			return err
		}
		if err := current.Select(id, weight); err != nil {
			return err
		}
	}
	for _, argument := range windows {
		window, err := parseWindow(argument)
		if err != nil {
			return err
		}
		if err := current.Exclude(window); err != nil {
			return err
		}
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	// Flags override the configuration
	if mode != "" {
		settings.Mode = mode
	}
	if frontier > 0 {
		settings.MaxFrontier = frontier
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	current, _, registry, err := newSession()
	if err != nil {
		return err
	}
	if err := applyArguments(current, eventArgs, excludeArgs); err != nil {
		return err
	}

	report, err := current.Build(settings.Mode, settings.MaxFrontier)
	if err != nil {
		return fmt.Errorf("an error occurred during schedule construction: %v", err)
	}

	reportJson, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("an error occurred while building output json: %v", err)
	}

	// Write to the standard output unless an output file was given
	if outPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(reportJson))
	} else if err := os.WriteFile(outPath, reportJson, 0666); err != nil {
		return fmt.Errorf("an error occurred while writing to the output file: %v", err)
	}

	logger.Info("report written",
		zap.Int("scheduled", len(report.Entries)),
		zap.Uint64s("unscheduled", report.Unscheduled),
		zap.Float64("weight", report.Weight),
	)
	return writeMetrics(registry)
}
