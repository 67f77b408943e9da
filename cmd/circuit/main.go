package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edp1096/toy-circuit/internal/chart"
	"github.com/edp1096/toy-circuit/internal/config"
	"github.com/edp1096/toy-circuit/internal/handler"
	"github.com/edp1096/toy-circuit/internal/script"
	"github.com/edp1096/toy-circuit/internal/session"
	"github.com/edp1096/toy-circuit/internal/watcher"
	"github.com/edp1096/toy-circuit/pkg/analysis"
	"github.com/edp1096/toy-circuit/pkg/netlist"
)

const usage = `Usage: circuit [-config file] <command> [flags] [args]

Commands:
  serve                 serve the HTTP API
  run <script.yaml>     apply an edit script and print the circuit
  watch <script.yaml>   re-run a script whenever it changes
  netlist [script]      print the circuit as a SPICE deck
  check [script]        compare the closed-form and nodal solutions
  sweep [script]        sweep the supply voltage (-start -stop -step -plot)
  spice <deck.cir>      solve a resistive SPICE deck nodally
`

func main() {
	log.SetFlags(log.LstdFlags)

	configPath := flag.String("config", "", "config file (default: search $CIRCUIT_CONFIG, ./circuit.yaml)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "serve":
		err = serve(cfg, args)
	case "run":
		err = run(cfg, args)
	case "watch":
		err = watch(cfg, args)
	case "netlist":
		err = printNetlist(cfg, args)
	case "check":
		err = check(cfg, args)
	case "sweep":
		err = sweep(cfg, args)
	case "spice":
		err = spice(args)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, _, err := config.LoadFromPath(path)
		return cfg, err
	}
	cfg, found, err := config.Load()
	if err == nil && found != "" {
		log.Printf("Using config %s", found)
	}
	return cfg, err
}

// sessionFromArgs builds a session and applies the optional script argument.
func sessionFromArgs(cfg *config.Config, args []string) (*session.Session, error) {
	sess := session.NewFromConfig(cfg)
	if len(args) == 0 {
		return sess, nil
	}

	sc, err := script.Load(args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.Apply(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func serve(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	origin := fs.String("origin", cfg.Server.AllowedOrigin, "CORS allowed origin")
	fs.Parse(args)

	sess, err := sessionFromArgs(cfg, fs.Args())
	if err != nil {
		return err
	}

	h := handler.NewCircuitHandler(sess)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler.Cors(*origin, h.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", *addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func run(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("run needs exactly one script")
	}
	sess, err := sessionFromArgs(cfg, args)
	if err != nil {
		return err
	}
	printView(sess.View())
	return nil
}

func watch(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("watch needs exactly one script")
	}
	path := args[0]
	sess := session.NewFromConfig(cfg)

	apply := func() {
		sc, err := script.Load(path)
		if err == nil {
			err = sc.Apply(sess)
		}
		if err != nil {
			log.Printf("Script %s: %v", path, err)
			return
		}
		printView(sess.View())
	}
	apply()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(path, apply).WithDebounce(cfg.Watch.Debounce.Duration())
	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printNetlist(cfg *config.Config, args []string) error {
	sess, err := sessionFromArgs(cfg, args)
	if err != nil {
		return err
	}
	fmt.Print(sess.Netlist())
	return nil
}

func check(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	tol := fs.Float64("tol", 1e-9, "largest accepted current deviation (A)")
	fs.Parse(args)

	sess, err := sessionFromArgs(cfg, fs.Args())
	if err != nil {
		return err
	}

	report, err := sess.Check()
	if err != nil {
		return err
	}
	printCheck(report)

	if report.MaxCurrentError > *tol {
		return fmt.Errorf("nodal and closed-form solutions differ by %g A", report.MaxCurrentError)
	}
	return nil
}

func sweep(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	start := fs.Float64("start", 0, "first supply voltage")
	stop := fs.Float64("stop", cfg.Circuit.Voltage, "last supply voltage")
	step := fs.Float64("step", 1, "voltage increment")
	plotPath := fs.String("plot", "", "write a plot of the supply current to this file (.png, .svg, .pdf)")
	fs.Parse(args)

	sess, err := sessionFromArgs(cfg, fs.Args())
	if err != nil {
		return err
	}

	results, err := sess.Sweep(*start, *stop, *step)
	if err != nil {
		return err
	}
	printResults(results)

	if *plotPath == "" {
		return nil
	}

	supply := fmt.Sprintf("I(%s)", netlist.SourceName)
	p, err := chart.NewSweepPlot(sess.View().Name, results, []string{supply})
	if err != nil {
		return err
	}
	if err := chart.Save(p, *plotPath); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	log.Printf("Plot written to %s", *plotPath)
	return nil
}

func spice(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("spice needs exactly one deck")
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading netlist file: %w", err)
	}

	data, err := netlist.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing netlist: %w", err)
	}

	net, err := analysis.NewNetwork(data)
	if err != nil {
		return err
	}
	defer net.Destroy()

	op := analysis.NewOP()
	if err := op.Setup(net); err != nil {
		return err
	}
	if err := op.Execute(); err != nil {
		return err
	}

	fmt.Printf("Circuit: %s (%d nodes)\n", net.Title(), net.NumNodes())
	printResults(op.GetResults())
	return nil
}
