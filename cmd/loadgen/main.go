package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/typerank/internal/loadgen"
	"github.com/okian/typerank/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL     = flag.String("url", loadgen.DefaultBaseURL, "Base URL of the service")
		players     = flag.Int("players", loadgen.DefaultPlayers, "Number of distinct players")
		submissions = flag.Int("submissions", loadgen.DefaultSubmissions, "Number of score submissions")
		workers     = flag.Int("workers", loadgen.DefaultWorkers, "Number of concurrent workers")
		maxScore    = flag.Int("max-score", loadgen.DefaultMaxScore, "Highest generated score")
		timeout     = flag.Duration("timeout", loadgen.DefaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Write generated submissions to this JSON file")
		logFormat   = flag.String("log-format", "text", "Log format (text or json)")
		verbose     = flag.Bool("verbose", false, "Log every rejected submission")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:     *baseURL,
		Players:     *players,
		Submissions: *submissions,
		Workers:     *workers,
		MaxScore:    *maxScore,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if _, err := loadgen.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
