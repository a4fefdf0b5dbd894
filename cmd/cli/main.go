package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

type client struct {
	baseURL  string
	timeout  time.Duration
	username string
	password string
	token    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}

	rootCmd := &cobra.Command{
		Use:          "cardledger-cli",
		Short:        "CardLedger CLI tool",
		Long:         `A command line interface for interacting with the CardLedger API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the CardLedger API")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&c.username, "user", os.Getenv("CARDLEDGER_USER"), "Basic auth username")
	rootCmd.PersistentFlags().StringVar(&c.password, "password", os.Getenv("CARDLEDGER_PASSWORD"), "Basic auth password")
	rootCmd.PersistentFlags().StringVar(&c.token, "token", os.Getenv("CARDLEDGER_TOKEN"), "Bearer token, takes precedence over basic auth")

	rootCmd.AddCommand(
		tokenCmd(c),
		hashPasswordCmd(),
		accountsCmd(c),
		transactionsCmd(c),
		transfersCmd(c),
		ledgerCmd(c),
	)

	return rootCmd
}

func tokenCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Exchange basic credentials for a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodPost, "/api/v1/auth/token", nil, "")
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for BASIC_AUTH_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func accountsCmd(c *client) *cobra.Command {
	accounts := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open an account with zero balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodPost, "/api/v1/accounts", map[string]string{"name": name}, "")
		},
	}
	create.Flags().StringVar(&name, "name", "", "Account name")
	_ = create.MarkFlagRequired("name")

	get := &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Show an account and its balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, "")
		},
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/accounts"+pageQuery(limit, offset), nil, "")
		},
	}
	addPageFlags(list, &limit, &offset)

	var loadAmount, loadID, loadKey string
	load := &cobra.Command{
		Use:   "load ACCOUNT_ID",
		Short: "Credit an account from outside the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"amount": json.Number(loadAmount)}
			if loadID != "" {
				body["transactionID"] = loadID
			}
			return c.call(cmd, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/load", body, loadKey)
		},
	}
	load.Flags().StringVar(&loadAmount, "amount", "", "Amount to load")
	load.Flags().StringVar(&loadID, "id", "", "Transaction ID (generated when empty)")
	load.Flags().StringVar(&loadKey, "idempotency-key", "", "Idempotency key (random when empty)")
	_ = load.MarkFlagRequired("amount")

	transfers := &cobra.Command{
		Use:   "transfers ACCOUNT_ID",
		Short: "List an account's transfers with derived balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/transfers", nil, "")
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile ACCOUNT_ID",
		Short: "Compare stored balances with the transfer history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/reconciliation", nil, "")
		},
	}

	accounts.AddCommand(create, get, list, load, transfers, reconcile)
	return accounts
}

func transactionsCmd(c *client) *cobra.Command {
	transactions := &cobra.Command{
		Use:   "transactions",
		Short: "Transaction operations",
	}

	var (
		id, sender, receiver, amount, txType, key string
	)
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit an authorization or presentment",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"senderID":        sender,
				"receiverID":      receiver,
				"amount":          json.Number(amount),
				"transactionType": txType,
			}
			if id != "" {
				body["transactionID"] = id
			}
			return c.call(cmd, http.MethodPost, "/api/v1/transactions", body, key)
		},
	}
	submit.Flags().StringVar(&id, "id", "", "Transaction ID, required for presentment")
	submit.Flags().StringVar(&sender, "sender", "", "Sender account ID")
	submit.Flags().StringVar(&receiver, "receiver", "", "Receiver account ID")
	submit.Flags().StringVar(&amount, "amount", "", "Amount")
	submit.Flags().StringVar(&txType, "type", "authorization", "authorization or presentment")
	submit.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (random when empty)")
	for _, f := range []string{"sender", "receiver", "amount"} {
		_ = submit.MarkFlagRequired(f)
	}

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/transactions/"+url.PathEscape(args[0]), nil, "")
		},
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/transactions"+pageQuery(limit, offset), nil, "")
		},
	}
	addPageFlags(list, &limit, &offset)

	transactions.AddCommand(submit, get, list)
	return transactions
}

func transfersCmd(c *client) *cobra.Command {
	transfers := &cobra.Command{
		Use:   "transfers",
		Short: "Transfer operations",
	}

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/transfers/"+url.PathEscape(args[0]), nil, "")
		},
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/transfers"+pageQuery(limit, offset), nil, "")
		},
	}
	addPageFlags(list, &limit, &offset)

	transfers.AddCommand(get, list)
	return transfers
}

func ledgerCmd(c *client) *cobra.Command {
	ledger := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.checkConsistency(cmd)
		},
	}

	report := &cobra.Command{
		Use:   "report",
		Short: "Reconcile every account and check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/ledger/reconciliation", nil, "")
		},
	}

	ledger.AddCommand(consistency, report)
	return ledger
}

func (c *client) checkConsistency(cmd *cobra.Command) error {
	status, body, err := c.do(http.MethodGet, "/api/v1/ledger/consistency", nil, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	var result struct {
		Status     string            `json:"status"`
		Consistent bool              `json:"consistent"`
		Unbalanced []json.RawMessage `json:"unbalanced"`
	}
	if err := json.Unmarshal(body, &result); err != nil || (status != http.StatusOK && status != http.StatusConflict) {
		fmt.Fprintf(out, "Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		return fmt.Errorf("unexpected status %d", status)
	}

	if !result.Consistent {
		fmt.Fprintf(out, "Consistency check FAILED\n")
		fmt.Fprintf(out, "Unbalanced transactions: %d\n", len(result.Unbalanced))
		printJSON(out, body)
		return fmt.Errorf("ledger is inconsistent")
	}

	fmt.Fprintf(out, "Consistency check PASSED\n")
	fmt.Fprintf(out, "Status: %s\n", result.Status)
	return nil
}

// call performs the request and pretty-prints the response body.
func (c *client) call(cmd *cobra.Command, method, path string, payload any, idempotencyKey string) error {
	status, body, err := c.do(method, path, payload, idempotencyKey)
	if err != nil {
		return err
	}

	printJSON(cmd.OutOrStdout(), body)

	if status >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", status)
	}
	return nil
}

func (c *client) do(method, path string, payload any, idempotencyKey string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && path != "/api/v1/auth/token" {
		if idempotencyKey == "" {
			idempotencyKey = uuid.NewString()
		}
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "":
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := (&http.Client{Timeout: c.timeout}).Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func printJSON(w io.Writer, body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Fprintln(w, string(body))
		return
	}
	fmt.Fprintln(w, buf.String())
}

func addPageFlags(cmd *cobra.Command, limit, offset *int) {
	cmd.Flags().IntVar(limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(offset, "offset", 0, "Page offset")
}

func pageQuery(limit, offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return "?" + q.Encode()
}
