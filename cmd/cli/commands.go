package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/iho/creditbook/internal/adapter/http/dto"
)

func newClientsCmd(api *apiClient) *cobra.Command {
	clientsCmd := &cobra.Command{
		Use:   "clients",
		Short: "Client operations",
	}

	var add dto.AddClientRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			var client dto.ClientResponse
			if err := api.postJSON(cmd.Context(), "POST", "/api/v1/clients/", add, &client); err != nil {
				return err
			}
			printClient(cmd.OutOrStdout(), &client)
			return nil
		},
	}
	addCmd.Flags().StringVar(&add.Name, "name", "", "Client name")
	addCmd.Flags().StringVar(&add.Contact, "contact", "", "Phone number")
	addCmd.Flags().StringVar(&add.Address, "address", "", "Address")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("contact")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListClientsResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/clients/", &resp); err != nil {
				return err
			}
			printClients(cmd.OutOrStdout(), resp.Clients)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var client dto.ClientResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/clients/"+url.PathEscape(args[0]), &client); err != nil {
				return err
			}
			printClient(cmd.OutOrStdout(), &client)
			return nil
		},
	}

	var name, contact, address string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a client's name, contact or address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateClientRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("contact") {
				req.Contact = &contact
			}
			if cmd.Flags().Changed("address") {
				req.Address = &address
			}
			if req.Name == nil && req.Contact == nil && req.Address == nil {
				return fmt.Errorf("nothing to update; pass --name, --contact or --address")
			}

			var client dto.ClientResponse
			if err := api.postJSON(cmd.Context(), "PATCH", "/api/v1/clients/"+url.PathEscape(args[0]), req, &client); err != nil {
				return err
			}
			printClient(cmd.OutOrStdout(), &client)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&name, "name", "", "New name")
	updateCmd.Flags().StringVar(&contact, "contact", "", "New phone number")
	updateCmd.Flags().StringVar(&address, "address", "", "New address")

	eventsCmd := &cobra.Command{
		Use:   "events <id>",
		Short: "List a client's sales and payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var events []dto.EventResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/clients/"+url.PathEscape(args[0])+"/events", &events); err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}

	clientsCmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, eventsCmd)
	return clientsCmd
}

func newSaleCmd(api *apiClient) *cobra.Command {
	var req dto.RecordSaleRequest
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record a sale on credit",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sale dto.SaleResponse
			if err := api.postJSON(cmd.Context(), "POST", "/api/v1/sales", req, &sale); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sale %s recorded: %s kg x %s = %s on %s\n",
				sale.ID, sale.Quantity.String(), sale.UnitPrice, sale.TotalAmount, sale.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ClientID, "client", "", "Client ID")
	cmd.Flags().StringVar(&req.Quantity, "quantity", "", "Quantity in kg")
	cmd.Flags().StringVar(&req.UnitPrice, "price", "", "Price per kg")
	cmd.Flags().StringVar(&req.Date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.MarkFlagRequired("client")
	cmd.MarkFlagRequired("quantity")
	cmd.MarkFlagRequired("price")
	return cmd
}

func newPaymentCmd(api *apiClient) *cobra.Command {
	var req dto.RecordPaymentRequest
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record a payment received",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payment dto.PaymentResponse
			if err := api.postJSON(cmd.Context(), "POST", "/api/v1/payments", req, &payment); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payment %s recorded: %s on %s\n", payment.ID, payment.Amount, payment.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ClientID, "client", "", "Client ID")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount paid")
	cmd.Flags().StringVar(&req.Date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.MarkFlagRequired("client")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newStatementCmd(api *apiClient) *cobra.Command {
	var (
		asCSV  bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "statement <client-id>",
		Short: "Print a client's statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/clients/" + url.PathEscape(args[0]) + "/statement"

			if asCSV {
				w := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return api.download(cmd.Context(), path+".csv", w)
			}

			var statement dto.StatementResponse
			if err := api.getJSON(cmd.Context(), path, &statement); err != nil {
				return err
			}
			printStatement(cmd.OutOrStdout(), &statement)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Print CSV instead of a table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the CSV to this file")
	return cmd
}

func newPricesCmd(api *apiClient) *cobra.Command {
	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Daily price operations",
	}

	var add dto.AddDailyPriceRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record the day's price per kg",
		RunE: func(cmd *cobra.Command, args []string) error {
			var price dto.DailyPriceResponse
			if err := api.postJSON(cmd.Context(), "POST", "/api/v1/prices/", add, &price); err != nil {
				return err
			}
			printPrices(cmd.OutOrStdout(), []*dto.DailyPriceResponse{&price})
			return nil
		},
	}
	addCmd.Flags().StringVar(&add.PricePerKg, "price", "", "Price per kg")
	addCmd.Flags().StringVar(&add.Supplier, "supplier", "", "Supplier")
	addCmd.Flags().StringVar(&add.Date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	addCmd.MarkFlagRequired("price")
	addCmd.MarkFlagRequired("supplier")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var prices []*dto.DailyPriceResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/prices/", &prices); err != nil {
				return err
			}
			printPrices(cmd.OutOrStdout(), prices)
			return nil
		},
	}

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent price",
		RunE: func(cmd *cobra.Command, args []string) error {
			var price dto.DailyPriceResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/prices/latest", &price); err != nil {
				return err
			}
			printPrices(cmd.OutOrStdout(), []*dto.DailyPriceResponse{&price})
			return nil
		},
	}

	trendCmd := &cobra.Command{
		Use:   "trend",
		Short: "Compare the two most recent prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var trend dto.TrendResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/prices/trend", &trend); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %s (%s%%, %s)\n",
				trend.Previous.PricePerKg, trend.Latest.PricePerKg, trend.Delta, trend.Percent.StringFixed(2), trend.Direction)
			return nil
		},
	}

	pricesCmd.AddCommand(addCmd, listCmd, latestCmd, trendCmd)
	return pricesCmd
}

func newDashboardCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the business summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			var dashboard dto.DashboardResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/reports/dashboard", &dashboard); err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), &dashboard)
			return nil
		},
	}
}

func newOutstandingCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "outstanding",
		Short: "List clients who owe money, largest balance first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var risks []*dto.ClientRiskResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/reports/outstanding", &risks); err != nil {
				return err
			}
			printRisks(cmd.OutOrStdout(), risks)
			return nil
		},
	}
}

func newReconcileCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check client balances against the event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ReconciliationReportResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/reports/reconciliation", &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Clients: %d, reconciled: %d, orphan events: %d\n",
				report.TotalClients, report.ReconciledClients, report.OrphanEvents)
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  %s (%s): stored %s, derived %s, difference %s\n",
					d.ClientID, d.ClientName, d.StoredBalance, d.DerivedBalance, d.Difference)
			}
			if !report.LedgerConsistent {
				return fmt.Errorf("ledger is inconsistent")
			}
			fmt.Fprintln(out, "Ledger is consistent")
			return nil
		},
	}
}
