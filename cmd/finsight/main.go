// Command finsight is the terminal client for the StockFolo service:
// quote and history lookup, news sentiment, and watchlist management,
// either as one-shot subcommands or as an interactive TUI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"finsight/internal/api"
	"finsight/internal/config"
	"finsight/internal/market"
	"finsight/internal/news"
	"finsight/internal/session"
	"finsight/internal/store"
	"finsight/internal/tui"
	"finsight/internal/util"
	"finsight/internal/watchlist"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, api.ErrorMessage(err))
		os.Exit(1)
	}
}

// app holds the wired services shared by all subcommands.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	state     *store.StateStore
	sessions  *session.Store
	market    *market.Service
	news      *news.Service
	watchlist *watchlist.Synchronizer
}

// setup wires configuration, storage, the API client and the services.
// Stored credentials are rehydrated so every subcommand runs authenticated
// when a previous login left a token behind.
func (a *app) setup(configPath string) error {
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	a.log = util.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(a.log)

	state, err := store.Open(cfg.Storage.StatePath)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	a.state = state

	a.sessions = session.NewStore(state, a.log)
	client := api.New(cfg.API.BaseURL, cfg.API.Timeout(), a.sessions, a.log)
	a.sessions.SetClient(client)
	if err := a.sessions.Rehydrate(context.Background()); err != nil {
		a.log.Warn("restoring stored session", "error", err)
	}

	a.market = market.NewService(client, state, cfg.Storage.CacheTTL(), a.log)
	a.news = news.NewService(client, state, cfg.Storage.CacheTTL(), a.log)
	a.watchlist = watchlist.NewSynchronizer(client, a.log)
	return nil
}

func (a *app) close() {
	if a.state != nil {
		a.state.Close()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:           "finsight",
		Short:         "Terminal client for stock quotes, news sentiment and watchlists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(configPath)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "finsight.yaml", "config file path")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newQuoteCmd(a),
		newHistoryCmd(a),
		newNewsCmd(a),
		newWatchlistCmd(a),
		newTUICmd(a),
	)
	return root
}

// ---------------------------------------------------------------------------
// Auth commands
// ---------------------------------------------------------------------------

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := prompt("email: ")
			if err != nil {
				return err
			}
			password, err := promptPassword("password: ")
			if err != nil {
				return err
			}

			sess, err := a.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("signed in as %s\n", sess.Identity.Email)
			return nil
		},
	}
}

func newSignupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := prompt("first name: ")
			if err != nil {
				return err
			}
			last, err := prompt("last name: ")
			if err != nil {
				return err
			}
			email, err := prompt("email: ")
			if err != nil {
				return err
			}
			password, err := promptPassword("password: ")
			if err != nil {
				return err
			}

			sess, err := a.sessions.Register(cmd.Context(), first, last, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("welcome, %s\n", sess.Identity.FirstName)
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.sessions.Logout(cmd.Context())
			fmt.Println("logged out")
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// Market commands
// ---------------------------------------------------------------------------

func newQuoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show the current quote for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.market.Quote(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s  %s\n", q.Symbol, q.Name)
			fmt.Printf("last %.2f  high %.2f  low %.2f\n", q.Current, q.High, q.Low)
			if q.Exchange != "" || q.Sector != "" {
				fmt.Println(strings.TrimSpace(q.Exchange + "  " + q.Sector))
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show the OHLC history for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := a.market.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(points) == 0 {
				fmt.Println("no history available")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tOPEN\tHIGH\tLOW\tCLOSE")
			for _, p := range points {
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n", p.Date, p.Open, p.High, p.Low, p.Close)
			}
			w.Flush()

			if len(points) > 1 {
				sum := market.Summarize(market.ToChronological(points))
				fmt.Printf("\nperiod %+.2f%%  range %.2f - %.2f\n", sum.ChangePct, sum.Low, sum.High)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// News command
// ---------------------------------------------------------------------------

func newNewsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "news SYMBOL",
		Short: "Show news and sentiment for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.news.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("no news available")
				return nil
			}

			sum := news.SummarizeSentiment(items)
			fmt.Printf("%d articles  positive %d  negative %d  neutral %d", len(items), sum.Positive, sum.Negative, sum.Neutral)
			if sum.Unknown > 0 {
				fmt.Printf("  other %d", sum.Unknown)
			}
			fmt.Println()

			for _, p := range news.TrendByDay(items, nil) {
				fmt.Printf("  %s  %d\n", p.Date, p.Count)
			}
			fmt.Println()

			for _, it := range items {
				fmt.Printf("[%s] %s\n", it.Sentiment, it.Headline)
				fmt.Printf("    %s  %s\n", it.Source, it.PublishedAt)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// Watchlist commands
// ---------------------------------------------------------------------------

func newWatchlistCmd(a *app) *cobra.Command {
	watch := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.watchlist.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("watchlist is empty")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tNAME\tID")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Symbol, e.Name, e.ID)
			}
			return w.Flush()
		},
	}

	watch.AddCommand(&cobra.Command{
		Use:   "add SYMBOL NAME",
		Short: "Add a security to the watchlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.watchlist.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("added %s (%s)\n", entry.Symbol, entry.ID)
			return nil
		},
	})

	watch.AddCommand(&cobra.Command{
		Use:   "remove ID",
		Short: "Remove a watchlist entry by its identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The remove endpoint keys on the entry identifier, so the list
			// has to be loaded first to resolve it.
			if _, err := a.watchlist.Load(cmd.Context()); err != nil {
				return err
			}
			if err := a.watchlist.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("removed")
			return nil
		},
	})
	return watch
}

// ---------------------------------------------------------------------------
// TUI
// ---------------------------------------------------------------------------

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}
}

func (a *app) runTUI() error {
	model := tui.New(a.sessions, a.market, a.news, a.watchlist, a.log)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
