package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printClient(w io.Writer, c *dto.ClientResponse) {
	fmt.Fprintf(w, "ID:       %s\n", c.ID)
	fmt.Fprintf(w, "Name:     %s\n", c.Name)
	fmt.Fprintf(w, "Contact:  %s\n", c.Contact)
	if c.Address != "" {
		fmt.Fprintf(w, "Address:  %s\n", c.Address)
	}
	fmt.Fprintf(w, "Credit:   %s\n", c.TotalCredit)
	fmt.Fprintf(w, "Paid:     %s\n", c.TotalPaid)
	fmt.Fprintf(w, "Balance:  %s (%s)\n", c.Balance, c.RiskTier)
}

func printClients(w io.Writer, clients []*dto.ClientResponse) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tBALANCE\tRISK")
	for _, c := range clients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Contact, c.Balance, c.RiskTier)
	}
	tw.Flush()
}

func printEvents(w io.Writer, events []dto.EventResponse) {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date, e.Type, e.Amount, e.Description)
	}
	tw.Flush()
}

func printStatement(w io.Writer, s *dto.StatementResponse) {
	fmt.Fprintf(w, "Statement for %s (%s)\n\n", s.Client.Name, s.Client.ID)

	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
	for _, line := range s.Lines {
		amount := line.Amount.String()
		if line.Type == domain.EventPayment {
			amount = "-" + amount
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", line.Date, line.Type, amount, line.RunningBalance, line.Description)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nClosing balance: %s\n", s.ClosingBalance)
}

func printPrices(w io.Writer, prices []*dto.DailyPriceResponse) {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tPRICE/KG\tSUPPLIER")
	for _, p := range prices {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Date, p.PricePerKg, p.Supplier)
	}
	tw.Flush()
}

func printRisks(w io.Writer, risks []*dto.ClientRiskResponse) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCONTACT\tBALANCE\tRISK")
	for _, r := range risks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Contact, r.Balance, r.RiskTier)
	}
	tw.Flush()
}

func printDashboard(w io.Writer, d *dto.DashboardResponse) {
	row := func(label string, value any) { fmt.Fprintf(w, "%-21s%v\n", label+":", value) }

	row("Clients", fmt.Sprintf("%d (%d with balance)", d.TotalClients, d.ClientsWithBalance))
	row("Outstanding", d.TotalOutstanding)
	row("Sales this month", d.MonthSales)
	row("Payments this month", d.MonthPayments)
	if d.LatestPrice != nil {
		row("Latest price", fmt.Sprintf("%s/kg on %s", d.LatestPrice.PricePerKg, d.LatestPrice.Date))
	}
	if d.PriceTrend != nil {
		row("Price trend", fmt.Sprintf("%s (%s%%)", d.PriceTrend.Direction, d.PriceTrend.Percent.StringFixed(2)))
	}

	tiers := make([]string, 0, len(d.TierCounts))
	for tier := range d.TierCounts {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		fmt.Fprintf(w, "  %-12s %d\n", tier, d.TierCounts[domain.RiskTier(tier)])
	}

	if len(d.HighRisk) > 0 {
		fmt.Fprintln(w, "\nHighest balances:")
		printRisks(w, d.HighRisk)
	}
}
