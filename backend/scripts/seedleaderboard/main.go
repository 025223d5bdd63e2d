// Command seedleaderboard gives one account full marks on its stored results,
// for demo leaderboards. It can also purge old attempt counters.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"csshub/backend/config"
	"csshub/backend/quiz"
	"csshub/backend/repository"
	"csshub/backend/utils"

	flag "github.com/spf13/pflag"
)

func main() {
	email := flag.String("email", "", "email of the account to promote (required)")
	category := flag.String("category", quiz.AllCategories, "category to promote, or all")
	purgeDays := flag.Int("purge-days", 0, "also delete attempt counters older than this many days (0 keeps them)")
	timeout := flag.Duration("timeout", 30*time.Second, "database timeout")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		os.Exit(1)
	}
	if *category != quiz.AllCategories && !quiz.ValidCategory(*category) {
		fmt.Fprintf(os.Stderr, "error: unknown category %q\n", *category)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	db, err := utils.InitDB(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store := repository.NewQuizStore(db)
	n, err := store.PromoteResults(ctx, *email, *category)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Printf("promoted %d results of %s (%s)\n", n, *email, *category)

	if *purgeDays > 0 {
		before := quiz.Day(time.Now().AddDate(0, 0, -*purgeDays))
		purged, err := store.PurgeAttemptCounters(ctx, before)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Printf("purged %d attempt counters before %s\n", purged, before)
	}
}
