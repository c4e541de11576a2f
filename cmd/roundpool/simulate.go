package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/roundpool/internal/config"
	"github.com/osse101/roundpool/internal/scenario"
	"github.com/osse101/roundpool/internal/utils"
)

// SimulateCommand replays scenario files against fresh in-memory ledgers
type SimulateCommand struct {
	out io.Writer
}

func (c *SimulateCommand) Name() string {
	return "simulate"
}

func (c *SimulateCommand) Description() string {
	return "Run scenario files: simulate [-parallel N] [-json] [-out file] [-keep] <scenario.yaml>..."
}

func (c *SimulateCommand) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	parallel := fs.Int("parallel", 4, "scenarios to run at once")
	asJSON := fs.Bool("json", false, "print full results as JSON")
	outPath := fs.String("out", "", "also write all results to this JSON file")
	keep := fs.Bool("keep", false, "keep each run's postgres schema for report -schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one scenario file is required")
	}

	scenarios := make([]*scenario.Scenario, 0, fs.NArg())
	for _, path := range fs.Args() {
		sc, err := scenario.LoadFile(path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
	}

	bus, closeBus, err := openEventBus(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBus()
	locker, closeLocker, err := openLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	stores, closeStores, err := openScenarioStores(ctx, cfg, *keep)
	if err != nil {
		return err
	}
	defer closeStores()

	engine := scenario.NewEngine(
		scenario.WithEventBus(bus),
		scenario.WithLocker(locker),
		scenario.WithStoreFactory(stores),
	)
	results, err := engine.RunAll(ctx, scenarios, *parallel)
	if err != nil {
		return err
	}

	if *outPath != "" {
		if err := utils.WriteJSONFile(*outPath, results); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
		if *asJSON {
			data, err := r.ToPrettyJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, string(data))
			continue
		}
		c.printResult(r)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}

func (c *SimulateCommand) printResult(r *scenario.ExecutionResult) {
	p := message.NewPrinter(language.English)

	status := "PASS"
	if !r.Success {
		status = "FAIL"
	}
	fmt.Fprintf(c.out, "\n[%s] %s (%s) %dms\n", status, r.ScenarioName, r.RunID, r.DurationMS)
	if r.Store != "" {
		fmt.Fprintf(c.out, "  store: %s\n", r.Store)
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Step", "Action", "Result", "Output")
	for _, s := range r.Steps {
		result := "ok"
		if !s.Success {
			result = "FAILED"
			if s.Error != "" {
				result += ": " + s.Error
			}
		}
		table.Append(
			fmt.Sprintf("%d", s.StepIndex),
			s.StepName,
			string(s.Action),
			result,
			formatOutput(p, s.Output),
		)
	}
	table.Render()

	if len(r.Pools) > 0 {
		pools := tablewriter.NewWriter(c.out)
		pools.Header("Market", "In", "Out", "Balance")
		for _, pool := range r.Pools {
			pools.Append(
				fmt.Sprintf("%d", pool.MarketID),
				p.Sprintf("%d", pool.In),
				p.Sprintf("%d", pool.Out),
				p.Sprintf("%d", pool.Balance),
			)
		}
		pools.Render()
	}
	if r.Error != "" {
		fmt.Fprintf(c.out, "  error: %s\n", r.Error)
	}
}

func formatOutput(p *message.Printer, output map[string]any) string {
	keys := make([]string, 0, len(output))
	for k := range output {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := output[k].(type) {
		case uint64:
			parts = append(parts, p.Sprintf("%s=%d", k, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}
