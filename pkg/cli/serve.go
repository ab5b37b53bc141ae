package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/getmockd/userdesk/internal/id"
	"github.com/getmockd/userdesk/pkg/config"
	"github.com/getmockd/userdesk/pkg/memstore"
	"github.com/spf13/cobra"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 5 * time.Second

var (
	serveAddr     string
	serveSeed     string
	serveIDStyle  string
	serveMaxItems int
	serveRate     float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an in-memory remote store",
	Long: `Run an in-memory store that speaks the same REST contract userdesk uses:

  GET    /Users        list in insertion order
  POST   /Users        create (id assigned by the store)
  GET    /Users/{id}   read one
  PUT    /Users/{id}   replace
  PATCH  /Users/{id}   merge fields
  DELETE /Users/{id}   remove

Data lives in memory only. --seed loads initial users from a YAML or JSON file
(a list of users, or a json-server db.json with a "Users" key).
--rate-limit caps requests per second across all clients; excess requests
get 429 Too Many Requests. Prometheus metrics are served on /metrics.
Request logs are written at --log-level info.`,
	Example: `  # Serve on the default port
  userdesk serve

  # Serve seeded data on another port
  userdesk serve --addr :4000 --seed users.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultServerAddr, "Listen address")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "Seed file (YAML or JSON)")
	serveCmd.Flags().StringVar(&serveIDStyle, "id-style", config.DefaultIDStyle, "Identifier style: sequence, uuid, short")
	serveCmd.Flags().IntVar(&serveMaxItems, "max-items", 0, "Maximum number of users (0 = unlimited)")
	serveCmd.Flags().Float64Var(&serveRate, "rate-limit", 0, "Requests per second across all clients (0 = unlimited)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	applyServeFlags(cmd, settings)

	style, err := id.ParseStyle(settings.Server.IDStyle)
	if err != nil {
		return err
	}
	seed, err := settings.ResolveSeed()
	if err != nil {
		return err
	}

	store, err := memstore.New(memstore.Config{
		Resource:  settings.Resource,
		IDStyle:   style,
		MaxItems:  settings.Server.MaxItems,
		RateLimit: settings.Server.RateLimit,
		Seed:      seed,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	ln, err := net.Listen("tcp", settings.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", settings.Server.Addr, err)
	}

	srv := &http.Server{
		Handler:           store.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	out := cmd.OutOrStdout()
	_ = printResult(out, map[string]interface{}{
		"address":  "http://" + ln.Addr().String(),
		"resource": store.Resource(),
		"count":    store.Count(),
	}, func() {
		fmt.Fprintf(out, "Serving /%s on http://%s (%d users)\n", store.Resource(), ln.Addr(), store.Count())
		fmt.Fprintln(out, "Press Ctrl+C to stop")
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-cmd.Context().Done():
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = serveAddr
		cfg.Mark("server.addr", config.SourceFlag)
	}
	if flags.Changed("seed") {
		cfg.Server.SeedFile = serveSeed
		cfg.Mark("server.seedFile", config.SourceFlag)
	}
	if flags.Changed("id-style") {
		cfg.Server.IDStyle = serveIDStyle
		cfg.Mark("server.idStyle", config.SourceFlag)
	}
	if flags.Changed("max-items") {
		cfg.Server.MaxItems = serveMaxItems
		cfg.Mark("server.maxItems", config.SourceFlag)
	}
	if flags.Changed("rate-limit") {
		cfg.Server.RateLimit = serveRate
		cfg.Mark("server.rateLimit", config.SourceFlag)
	}
}
