// ABOUTME: Admin CLI for the MK7 trading API
// ABOUTME: Uses HTTP with JWT bearer authentication to manage users and settings

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/mk7/tradebot-backend/internal/apiclient"
)

const banner = `
            _    ______             _           _
  _ __ ___ | | _|___  /   __ _  __| |_ __ ___ (_)_ __
 | '_ ' _ \| |/ /  / /   / _' |/ _' | '_ ' _ \| | '_ \
 | | | | | |   <  / /   | (_| | (_| | | | | | | | | | |
 |_| |_| |_|_|\_\/_/     \__,_|\__,_|_| |_| |_|_|_| |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Get config from environment or token file
	apiURL := os.Getenv("MK7_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8001"
	}
	token := getToken()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = cmdLogin(apiURL, args)
	case "me":
		err = cmdMe(apiURL, token)
	case "status":
		err = cmdStatus(apiURL, token)
	case "users":
		err = cmdUsers(apiURL, token)
	case "upgrade":
		err = cmdUpgrade(apiURL, token, args)
	case "settings":
		err = cmdSettings(apiURL, token, args)
	case "prices":
		err = cmdPrices(apiURL)
	case "analyze":
		err = cmdAnalyze(apiURL, token, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: mk7-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login <email>            Log in and save the token")
	fmt.Println("  me                       Show your identity and plan")
	fmt.Println("  status                   Show API status and your identity")
	fmt.Println("  users                    List all registered users")
	fmt.Println("  upgrade <id> <plan>      Change a user's plan (basic/premium/admin)")
	fmt.Println("  settings                 Show platform settings")
	fmt.Println("  settings set <k> <v>     Update a settings field")
	fmt.Println("  prices                   Show current crypto prices")
	fmt.Println("  analyze <symbol>         Request an AI market analysis")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  MK7_API_URL              API base URL (default: http://localhost:8001)")
	fmt.Println("  MK7_TOKEN                JWT authentication token")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  mk7-admin login admin@mk7.com")
	fmt.Println("  mk7-admin users")
	fmt.Println("  mk7-admin upgrade 4f7c... premium")
	fmt.Println("  mk7-admin settings set basic_plan_price 19.99")
	fmt.Println()
}

// newClient creates an API client with the token already set.
func newClient(apiURL, token string) *apiclient.Client {
	c := apiclient.New(apiURL)
	if token != "" {
		c.SetToken(token)
	}
	return c
}

// requireToken fails fast when no token is available.
func requireToken(token string) error {
	if token == "" {
		return fmt.Errorf("MK7_TOKEN environment variable is required (or run: mk7-admin login <email>)")
	}
	return nil
}

// cmdLogin authenticates and saves the token to the config directory
func cmdLogin(apiURL string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: login <email>")
	}
	email := args[0]

	fmt.Print("Password: ")
	var password string
	if _, err := fmt.Scanln(&password); err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	c := apiclient.New(apiURL)
	tok, err := c.Login(context.Background(), email, password)
	if err != nil {
		return err
	}

	tokenPath, err := tokenFilePath()
	if err == nil {
		if mkErr := os.MkdirAll(filepath.Dir(tokenPath), 0755); mkErr == nil {
			if wrErr := os.WriteFile(tokenPath, []byte(tok.AccessToken), 0600); wrErr == nil {
				fmt.Printf("Token saved to %s\n", tokenPath)
			}
		}
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Logged in as %s (%s)\n", tok.User.Email, tok.User.UserType)
	return nil
}

// cmdMe shows the current user's identity
func cmdMe(apiURL, token string) error {
	if err := requireToken(token); err != nil {
		return err
	}

	c := newClient(apiURL, token)
	me, err := c.GetMe(context.Background())
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	fmt.Println()
	cyan.Println("  Identity")
	cyan.Println("  --------")
	fmt.Printf("  User ID:     %s\n", me.ID)
	fmt.Printf("  Email:       %s\n", me.Email)
	fmt.Printf("  Full Name:   %s\n", me.FullName)
	green.Printf("  Plan:        %s\n", me.UserType)
	if me.IsActive {
		fmt.Printf("  Status:      active\n")
	} else {
		fmt.Printf("  Status:      disabled\n")
	}
	fmt.Println()

	return nil
}

// cmdStatus shows API health and identity
func cmdStatus(apiURL, token string) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()

	c := newClient(apiURL, token)

	health, err := c.GetHealth(context.Background())
	if err != nil {
		yellow.Printf("  API:      ")
		color.Red("UNREACHABLE (%v)\n", err)
		return nil
	}

	green.Printf("  API:      ")
	fmt.Printf("%s (%s) at %s\n", health.Status, health.Service, apiURL)

	if token != "" {
		me, err := c.GetMe(context.Background())
		if err != nil {
			yellow.Printf("  Identity: ")
			color.Red("auth failed (%v)\n", err)
		} else {
			green.Printf("  Identity: ")
			fmt.Printf("%s (%s)\n", me.Email, me.UserType)
		}
	} else {
		yellow.Printf("  Identity: ")
		fmt.Println("(no token - set MK7_TOKEN or run: mk7-admin login <email>)")
	}

	fmt.Println()
	return nil
}

// cmdUsers lists all registered users
func cmdUsers(apiURL, token string) error {
	if err := requireToken(token); err != nil {
		return err
	}

	c := newClient(apiURL, token)
	users, err := c.ListUsers(context.Background())
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Registered Users")
	cyan.Println("  ----------------")

	if len(users) == 0 {
		fmt.Println("  (no users)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tEMAIL\tNAME\tPLAN\tACTIVE\tCREATED")
	fmt.Fprintln(w, "  --\t-----\t----\t----\t------\t-------")

	for _, u := range users {
		id := truncate(u.ID, 12)
		email := truncate(u.Email, 28)
		name := truncate(u.FullName, 20)
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		created := u.CreatedAt
		if t, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil {
			created = t.Format("Jan 02 15:04")
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n", id, email, name, u.UserType, active, created)
	}
	w.Flush()
	fmt.Println()

	return nil
}

// cmdUpgrade changes a user's plan
func cmdUpgrade(apiURL, token string, args []string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: upgrade <user-id> <basic|premium|admin>")
	}

	userID := args[0]
	newPlan := args[1]

	c := newClient(apiURL, token)
	msg, err := c.UpgradeUser(context.Background(), userID, newPlan)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
	return nil
}

// cmdSettings shows or updates platform settings
func cmdSettings(apiURL, token string, args []string) error {
	if err := requireToken(token); err != nil {
		return err
	}

	// Default to show
	subcmd := "show"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "show", "get":
		return cmdSettingsShow(apiURL, token)
	case "set":
		return cmdSettingsSet(apiURL, token, args)
	default:
		return fmt.Errorf("unknown settings subcommand: %s (use show, set)", subcmd)
	}
}

// cmdSettingsShow prints the settings singleton
func cmdSettingsShow(apiURL, token string) error {
	c := newClient(apiURL, token)
	settings, err := c.GetSettings(context.Background())
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Platform Settings")
	cyan.Println("  -----------------")
	fmt.Printf("  Basic plan price:    $%.2f\n", settings.BasicPlanPrice)
	fmt.Printf("  Premium plan price:  $%.2f\n", settings.PremiumPlanPrice)
	fmt.Printf("  Trading API keys:    %s\n", keyNames(settings.TradingAPIKeys))
	fmt.Printf("  Payment API keys:    %s\n", keyNames(settings.PaymentAPIKeys))
	fmt.Printf("  Updated:             %s\n", settings.UpdatedAt)
	fmt.Println()

	return nil
}

// cmdSettingsSet updates one settings field via read-modify-write
func cmdSettingsSet(apiURL, token string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: settings set <field> <value>")
	}
	field := args[0]
	value := args[1]

	c := newClient(apiURL, token)
	ctx := context.Background()

	settings, err := c.GetSettings(ctx)
	if err != nil {
		return err
	}

	switch field {
	case "basic_plan_price":
		price, err := parsePrice(value)
		if err != nil {
			return err
		}
		settings.BasicPlanPrice = price
	case "premium_plan_price":
		price, err := parsePrice(value)
		if err != nil {
			return err
		}
		settings.PremiumPlanPrice = price
	default:
		// trading.<name> or payment.<name> sets an API key
		switch {
		case strings.HasPrefix(field, "trading."):
			if settings.TradingAPIKeys == nil {
				settings.TradingAPIKeys = map[string]string{}
			}
			settings.TradingAPIKeys[strings.TrimPrefix(field, "trading.")] = value
		case strings.HasPrefix(field, "payment."):
			if settings.PaymentAPIKeys == nil {
				settings.PaymentAPIKeys = map[string]string{}
			}
			settings.PaymentAPIKeys[strings.TrimPrefix(field, "payment.")] = value
		default:
			return fmt.Errorf("unknown field: %s (use basic_plan_price, premium_plan_price, trading.<name>, payment.<name>)", field)
		}
	}

	if err := c.UpdateSettings(ctx, settings); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Updated %s\n", field)
	return nil
}

// cmdPrices shows current crypto prices
func cmdPrices(apiURL string) error {
	c := apiclient.New(apiURL)
	prices, err := c.GetCryptoPrices(context.Background())
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Crypto Prices (USD)")
	cyan.Println("  -------------------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  COIN\tPRICE\t24H CHANGE\tMARKET CAP")
	fmt.Fprintln(w, "  ----\t-----\t----------\t----------")

	for coin, p := range prices {
		fmt.Fprintf(w, "  %s\t$%.2f\t%+.2f%%\t$%.0f\n", coin, p.USD, p.USD24hChange, p.USDMarketCap)
	}
	w.Flush()
	fmt.Println()

	return nil
}

// cmdAnalyze requests an AI market analysis
func cmdAnalyze(apiURL, token string, args []string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: analyze <symbol> [timeframe] [type]")
	}

	symbol := args[0]
	timeframe := ""
	analysisType := ""
	if len(args) > 1 {
		timeframe = args[1]
	}
	if len(args) > 2 {
		analysisType = args[2]
	}

	c := newClient(apiURL, token)
	result, err := c.Analyze(context.Background(), symbol, timeframe, analysisType)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	fmt.Println()
	cyan.Printf("  %s (%s) by %s\n", result.Symbol, result.Timeframe, result.Analyst)
	fmt.Println()
	fmt.Println(result.Analysis)
	fmt.Println()
	gray.Printf("  generated at %s\n", result.GeneratedAt)
	fmt.Println()

	return nil
}

func parsePrice(s string) (float64, error) {
	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("price cannot be negative")
	}
	return v, nil
}

func keyNames(keys map[string]string) string {
	if len(keys) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// getToken returns the JWT token from MK7_TOKEN env var or ~/.config/mk7/token file
func getToken() string {
	// Check env var first
	if token := os.Getenv("MK7_TOKEN"); token != "" {
		return token
	}

	tokenPath, err := tokenFilePath()
	if err != nil {
		return ""
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// tokenFilePath returns the path of the saved token file.
func tokenFilePath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "mk7", "token"), nil
}
