package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/roundpool/internal/config"
	"github.com/osse101/roundpool/internal/domain"
)

// ReportCommand prints the markets held by the configured store
type ReportCommand struct {
	out io.Writer
}

func (c *ReportCommand) Name() string {
	return "report"
}

func (c *ReportCommand) Description() string {
	return "Summarize governance, markets and rounds in the configured store"
}

func (c *ReportCommand) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	schema := fs.String("schema", "", "postgres schema to read, such as one kept by simulate -keep")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ledger, closeLedger, err := openLedger(ctx, cfg, *schema)
	if err != nil {
		return err
	}
	defer closeLedger()

	gov, err := ledger.GetGovernance(ctx)
	if err != nil {
		return err
	}
	markets, err := ledger.ListMarkets(ctx)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	fmt.Fprintf(c.out, "deployer %s\ntreasury %s\nfee rate %s\nadmins   %d\n\n",
		gov.Deployer.Hex(), gov.Treasury.Hex(), formatRate(p, gov.FeeRate), len(gov.Admins))

	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Asset", "Max bet", "Paused", "Round", "Staked", "Resolved", "Open rounds")
	for _, m := range markets {
		staked, resolved, open := summarize(&m)
		table.Append(
			fmt.Sprintf("%d", m.ID),
			m.Asset,
			p.Sprintf("%d", m.MaxBet),
			fmt.Sprintf("%t", m.Paused),
			fmt.Sprintf("%d", m.CurrentRound),
			p.Sprintf("%d", staked),
			fmt.Sprintf("%d", resolved),
			fmt.Sprint(open),
		)
	}
	table.Render()
	return nil
}

// summarize returns the all-time stake, the number of resolved rounds and
// the rounds holding stake that are still unresolved
func summarize(m *domain.Market) (uint64, int, []uint64) {
	var staked uint64
	var open []uint64
	for round, total := range m.RoundTotals {
		staked += total
		if !m.IsResolved(round) {
			open = append(open, round)
		}
	}
	slices.Sort(open)
	return staked, len(m.Resolutions), open
}

func formatRate(p *message.Printer, rate uint64) string {
	return p.Sprintf("%.2f%%", float64(rate)*100/float64(domain.Scale))
}
