// Command studioctl is the operator console for the studio ledger. It works
// directly against the configured store, so it reviews payments and inspects
// accounts without going through the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/bootstrap"
	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/service"
	"github.com/lumina-ai/studio/internal/infrastructure/queue"
	"github.com/lumina-ai/studio/internal/pkg/config"
	"github.com/lumina-ai/studio/pkg/logger"
)

const usage = `usage: studioctl <command> [flags]

review commands:
  users                      list accounts and balances
  pending                    list payments awaiting review
  approve <tx-id>            approve a payment and credit its coins
  reject <tx-id>             reject a payment
  watch [-interval 5s]       stream the review queue until interrupted

session commands:
  signup -name N -email E -password P
  login -email E -password P
  logout
  whoami
`

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the process exit code so every deferred cleanup, the
// audit dispatcher drain included, runs before the process exits.
func realMain(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "studioctl", Output: stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, args[0], args[1:], stdout); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, cmd string, args []string, out io.Writer) error {
	backends := bootstrap.Open(ctx, cfg, log)
	defer backends.Close(context.Background())

	dispatcher := queue.NewDispatcher(1, backends.AuditSink(), log)
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	ledger, err := bootstrap.NewLedger(ctx, cfg, backends.Store, dispatcher, log)
	if err != nil {
		return err
	}
	auth := bootstrap.NewLocalAuth(cfg, ledger, backends.Store, log)

	switch cmd {
	case "users":
		printUsers(out, ledger.ListUsers(ctx))
		return nil

	case "pending":
		printTransactions(out, ledger.ListTransactionsByStatus(ctx, domain.TxPending))
		return nil

	case "approve", "reject":
		if len(args) != 1 {
			return fmt.Errorf("%s requires a transaction id", cmd)
		}
		status := domain.TxApproved
		if cmd == "reject" {
			status = domain.TxRejected
		}
		tx, err := ledger.SetTransactionStatus(ctx, args[0], status)
		if errors.Is(err, domain.ErrTransactionSettled) {
			fmt.Fprintf(out, "%s was already %s, nothing changed\n", tx.ID, tx.Status)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s (%d coins to %s)\n", tx.ID, tx.Status, tx.Coins, tx.UserName)
		return nil

	case "watch":
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		interval := fs.Duration("interval", cfg.Admin.RefreshInterval, "refresh interval")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return watch(ctx, ledger, *interval, log, out)

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ContinueOnError)
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		_, user, err := auth.Signup(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "signed up as %s with %d coins\n", user.Email, user.Coins)
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		_, user, err := auth.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		granted, updated, err := ledger.ClaimDailyReward(ctx, user.ID)
		if err == nil && granted {
			fmt.Fprintf(out, "daily reward: +%d coins\n", cfg.Ledger.DailyReward)
			user = updated
		}
		fmt.Fprintf(out, "logged in as %s (%s), %d coins\n", user.Email, user.Role, user.Coins)
		return nil

	case "logout":
		auth.Logout(ctx)
		fmt.Fprintln(out, "logged out")
		return nil

	case "whoami":
		user := auth.CurrentUser(ctx)
		if user == nil {
			fmt.Fprintln(out, "not logged in")
			return nil
		}
		printUsers(out, []domain.User{*user})
		return nil
	}

	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func watch(ctx context.Context, ledger *service.LedgerService, interval time.Duration, log zerolog.Logger, out io.Writer) error {
	feed := service.NewReviewFeed(ledger, interval, log)
	snapshots, cancel := feed.Subscribe()
	defer cancel()

	if err := feed.Start(ctx); err != nil {
		return err
	}
	defer feed.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "\n%s  %d pending, %d accounts\n", snap.At.Format(time.TimeOnly), len(snap.Pending), len(snap.Users))
			printTransactions(out, snap.Pending)
		}
	}
}

func printUsers(out io.Writer, users []domain.User) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tPLAN\tCOINS\tLAST REWARD")
	for _, u := range users {
		last := "-"
		if u.LastDailyReward != nil {
			last = u.LastDailyReward.Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n", u.ID, u.Email, u.Name, u.Role, u.Plan, u.Coins, last)
	}
	_ = w.Flush()
}

func printTransactions(out io.Writer, txs []domain.Transaction) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tPLAN\tAMOUNT\tCOINS\tUTR\tSTATUS\tDATE")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\tINR %d\t%d\t%s\t%s\t%s\n", tx.ID, tx.UserName, tx.PlanName, tx.Amount, tx.Coins, tx.UTR, tx.Status, tx.Date.Format(time.DateTime))
	}
	_ = w.Flush()
}
