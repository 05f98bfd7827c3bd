package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	userID  string
	role    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "valcoin-cli",
		Short: "ValCoin CLI tool",
		Long:  `A command line interface for interacting with the ValCoin ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ValCoin API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "Acting user id")
	rootCmd.PersistentFlags().StringVar(&role, "role", "", "Acting user role (ALUNO, PROFESSOR, ADMIN)")

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Rule catalog operations",
	}
	rulesCmd.AddCommand(listRulesCmd(), checkRuleCmd(), applyRuleCmd())

	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "Ledger transaction operations",
	}
	transactionsCmd.AddCommand(listTransactionsCmd(), groupCmd())

	rootCmd.AddCommand(rulesCmd, transactionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active rules",
		Run: func(cmd *cobra.Command, args []string) {
			body, err := request(http.MethodGet, "/api/v1/rules", nil)
			if err != nil {
				fail(err)
			}

			var rules []map[string]any
			if err := json.Unmarshal(body, &rules); err != nil {
				fail(fmt.Errorf("failed to parse response: %w", err))
			}

			for _, r := range rules {
				fmt.Printf("%-28s %-30s %8v %s\n",
					r["id"], truncate(fmt.Sprint(r["name"]), 30), r["amount"], r["direction"])
			}
		},
	}
}

func checkRuleCmd() *cobra.Command {
	var destination, discipline string

	cmd := &cobra.Command{
		Use:   "check <rule-id>",
		Short: "Dry-run an applicability check",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]string{
				"destination_user_id": destination,
				"discipline_id":       discipline,
			}

			body, err := request(http.MethodPost, "/api/v1/rules/"+args[0]+"/check", payload)
			if err != nil {
				fail(err)
			}

			var report map[string]any
			if err := json.Unmarshal(body, &report); err != nil {
				fail(fmt.Errorf("failed to parse response: %w", err))
			}

			printJSON(report)
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "Destination user id")
	cmd.Flags().StringVar(&discipline, "discipline", "", "Discipline id")

	return cmd
}

func applyRuleCmd() *cobra.Command {
	var destination, discipline, description string

	cmd := &cobra.Command{
		Use:   "apply <rule-id>",
		Short: "Apply a rule",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]string{
				"destination_user_id": destination,
				"discipline_id":       discipline,
				"description":         description,
			}

			body, err := request(http.MethodPost, "/api/v1/rules/"+args[0]+"/apply", payload)
			if err != nil {
				fail(err)
			}

			var created map[string]any
			if err := json.Unmarshal(body, &created); err != nil {
				fail(fmt.Errorf("failed to parse response: %w", err))
			}

			printJSON(created)
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "Destination user id")
	cmd.Flags().StringVar(&discipline, "discipline", "", "Discipline id")
	cmd.Flags().StringVar(&description, "description", "", "Transaction description")

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transactions",
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/transactions"
			if filter != "" {
				path += "?filter=" + filter
			}

			body, err := request(http.MethodGet, path, nil)
			if err != nil {
				fail(err)
			}

			var rows []map[string]any
			if err := json.Unmarshal(body, &rows); err != nil {
				fail(fmt.Errorf("failed to parse response: %w", err))
			}

			for _, row := range rows {
				fmt.Printf("%-28s %-10s %8v %-12s %s\n",
					row["id"], row["status"], row["amount"], row["direction"],
					truncate(fmt.Sprint(row["description"]), 40))
			}
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Named time filter (today, week, month)")

	return cmd
}

func groupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "group <transaction-id>",
		Short: "Inspect a transaction group and flag inconsistent rows",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			body, err := request(http.MethodGet, "/api/v1/transactions/"+args[0]+"/group", nil)
			if err != nil {
				fail(err)
			}

			var rows []map[string]any
			if err := json.Unmarshal(body, &rows); err != nil {
				fail(fmt.Errorf("failed to parse response: %w", err))
			}

			inconsistent := 0
			for _, row := range rows {
				kind := fmt.Sprint(row["origin_kind"])
				status := fmt.Sprint(row["status"])

				// System rows commit atomically with their primary row, so
				// anything but APROVADA means a broken group.
				marker := ""
				if kind != "USER" && status != "APROVADA" {
					marker = " INCONSISTENT"
					inconsistent++
				}

				fmt.Printf("%-28s %-16s %-10s %8v%s\n",
					row["id"], kind, status, row["amount"], marker)
			}

			if inconsistent > 0 {
				fail(fmt.Errorf("%d inconsistent row(s) in group", inconsistent))
			}
		},
	}
}

// request performs an authenticated API call and returns the body on any
// 2xx status.
func request(method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(err)
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
