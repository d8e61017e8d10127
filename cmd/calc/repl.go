package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"exdollarium-calculator/internal/calculator"
	"exdollarium-calculator/internal/domain/model"
)

const prompt = "> "

const helpText = `commands:
  services          list services
  service <name>    select a service
  currency <code>   select usd, eur or gbp
  amount <value>    enter an amount
  calc              compute the NGN equivalent
  state             show the form state
  reload            fetch the catalog again
  quit              leave`

// repl drives a calculator Session from line commands.
type repl struct {
	session   *calculator.Session
	formatter *calculator.Formatter
	reload    func(ctx context.Context) error
	catalog   func(ctx context.Context) []model.Service
	out       io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(r.out, helpText)
	fmt.Fprint(r.out, prompt)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := r.exec(ctx, scanner.Text()); quit {
			return nil
		}
		fmt.Fprint(r.out, prompt)
	}
	return scanner.Err()
}

// exec runs one command line and reports whether the session should end.
func (r *repl) exec(ctx context.Context, line string) bool {
	command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case "":
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, helpText)
	case "services":
		printServices(r.out, r.session.Catalog(), r.formatter)
	case "service":
		if err := r.session.SelectService(arg); err != nil {
			fmt.Fprintln(r.out, calculator.Message(err))
			return false
		}
		r.printRate()
	case "currency":
		currency := model.ParseCurrency(arg)
		if !currency.IsSupported() {
			fmt.Fprintf(r.out, "Unsupported currency %q.\n", arg)
			return false
		}
		r.session.SelectCurrency(currency)
		r.printRate()
	case "amount":
		r.session.EnterAmount(arg)
	case "calc":
		result, err := r.session.Calculate()
		if err != nil {
			fmt.Fprintln(r.out, calculator.Message(err))
			return false
		}
		printResult(r.out, result, r.formatter)
	case "state":
		r.printState()
	case "reload":
		if err := r.reload(ctx); err != nil {
			fmt.Fprintf(r.out, "Reload failed: %v\n", err)
			return false
		}
		r.session.SetCatalog(r.catalog(ctx))
		fmt.Fprintf(r.out, "Loaded %d services.\n", len(r.session.Catalog()))
	default:
		fmt.Fprintf(r.out, "Unknown command %q, type help.\n", command)
	}
	return false
}

func (r *repl) printRate() {
	if r.session.Service() == "" || r.session.Currency() == "" {
		return
	}
	rate, err := r.session.Rate()
	if err != nil {
		fmt.Fprintln(r.out, calculator.Message(err))
		return
	}
	fmt.Fprintf(r.out, "Rate: %s NGN per %s\n", r.formatter.FormatRate(rate), strings.ToUpper(string(r.session.Currency())))
}

func (r *repl) printState() {
	fmt.Fprintf(r.out, "state=%s service=%q currency=%q amount=%q\n",
		r.session.State(), r.session.Service(), r.session.Currency(), r.session.Amount())
	if err := r.session.Err(); err != nil {
		fmt.Fprintf(r.out, "error: %s\n", calculator.Message(err))
	}
	if result := r.session.Result(); result != nil {
		printResult(r.out, result, r.formatter)
	}
}

func printServices(out io.Writer, services []model.Service, formatter *calculator.Formatter) {
	if len(services) == 0 {
		fmt.Fprintln(out, "No services available.")
		return
	}
	for _, s := range services {
		var rates []string
		for _, c := range model.SupportedCurrencies {
			rate, err := calculator.ResolveRate(s, c)
			if err != nil {
				continue
			}
			rates = append(rates, fmt.Sprintf("%s %s", strings.ToUpper(string(c)), formatter.FormatRate(rate)))
		}
		fmt.Fprintf(out, "%s: %s\n", s.Name, strings.Join(rates, ", "))
	}
}

func printResult(out io.Writer, result *model.CalculationResult, formatter *calculator.Formatter) {
	fmt.Fprintf(out, "NGN equivalent: %s\n", formatter.FormatResult(result.NGNEquivalent))
}
