package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"exdollarium-calculator/internal/adapter/cache"
	"exdollarium-calculator/internal/adapter/repository"
	"exdollarium-calculator/internal/calculator"
	"exdollarium-calculator/internal/domain/model"
	"exdollarium-calculator/internal/service"
	"exdollarium-calculator/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdin, os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "calc",
		Usage:     "compute NGN equivalents from the live Exdollarium service catalog",
		Writer:    out,
		ErrWriter: os.Stderr,
		Reader:    in,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-base",
				Value:   "http://localhost:5000",
				Usage:   "base URL of the host serving /api/services",
				EnvVars: []string{"CATALOG_API_BASE_URL"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   10 * time.Second,
				Usage:   "catalog request timeout, 0 disables it",
				EnvVars: []string{"CATALOG_API_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "locale",
				Value:   "en",
				Usage:   "locale used for number formatting",
				EnvVars: []string{"DISPLAY_LOCALE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "services",
				Usage:  "list services and their live rates",
				Action: servicesAction,
			},
			{
				Name:  "calculate",
				Usage: "compute the NGN equivalent of one amount",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "service", Aliases: []string{"s"}, Usage: "service name"},
					&cli.StringFlag{Name: "currency", Aliases: []string{"c"}, Value: string(model.USD), Usage: "usd, eur or gbp"},
					&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "amount in the selected currency"},
				},
				Action: calculateAction,
			},
			{
				Name:   "interactive",
				Usage:  "drive a calculator form line by line",
				Action: interactiveAction,
			},
		},
	}
}

type deps struct {
	service   *service.CatalogService
	formatter *calculator.Formatter
}

func newDeps(c *cli.Context) *deps {
	log := logger.New(logger.Options{Level: c.String("log-level"), Output: c.App.ErrWriter})
	repo := repository.NewCatalogAPI(c.String("api-base"), c.Duration("timeout"), 2, log)

	return &deps{
		service:   service.NewCatalogService(repo, cache.NewMemoryCache(0, log), nil, log),
		formatter: calculator.NewFormatter(c.String("locale")),
	}
}

func servicesAction(c *cli.Context) error {
	d := newDeps(c)

	services, err := d.service.LoadCatalog(c.Context)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	printServices(c.App.Writer, services, d.formatter)
	return nil
}

func calculateAction(c *cli.Context) error {
	d := newDeps(c)

	result, err := d.service.Calculate(c.Context, model.CalculationRequest{
		Service:  c.String("service"),
		Currency: model.ParseCurrency(c.String("currency")),
		Amount:   c.String("amount"),
	})
	if err != nil {
		if msg := calculator.Message(err); msg != "" {
			return cli.Exit(msg, 1)
		}
		return cli.Exit(err.Error(), 1)
	}

	printResult(c.App.Writer, result, d.formatter)
	return nil
}

func interactiveAction(c *cli.Context) error {
	d := newDeps(c)

	r := &repl{
		session:   calculator.NewSession(d.service.Catalog(c.Context)),
		formatter: d.formatter,
		reload:    d.service.Refresh,
		catalog:   d.service.Catalog,
		out:       c.App.Writer,
	}
	return r.run(c.Context, c.App.Reader)
}
