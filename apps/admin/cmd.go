package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	dir *auth.Directory
	svc *fee.Service
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  checklogin -email EMAIL -role student|admin - check a mock account's password")
	fmt.Fprintln(cli.out, "  summary - print the fee summary")
	fmt.Fprintln(cli.out, "  export -out FILE [-status STATUS] [-sort date|amount] - export transactions as XLSX")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	checkLoginCmd := flag.NewFlagSet("checklogin", flag.ContinueOnError)
	checkLoginEmail := checkLoginCmd.String("email", "", "The account email. The password will be prompted next.")
	checkLoginRole := checkLoginCmd.String("role", string(auth.RoleStudent), "The account role: student or admin.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportOut := exportCmd.String("out", "", "The XLSX file to write.")
	exportStatus := exportCmd.String("status", "all", "Only export transactions with this status.")
	exportSort := exportCmd.String("sort", string(fee.SortByDate), "Sort by date or amount, descending.")

	for _, fs := range []*flag.FlagSet{checkLoginCmd, exportCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "checklogin":
		if err := checkLoginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *checkLoginEmail == "" {
			checkLoginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			checkLoginCmd.Usage()
			return errHelp
		}
		return cli.checkLogin(*checkLoginEmail, string(pwd), auth.Role(*checkLoginRole))
	case "summary":
		return cli.summary(context.Background())
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		filter := fee.TransactionFilter{Status: fee.Status(*exportStatus), SortBy: fee.SortBy(*exportSort)}
		return cli.export(context.Background(), *exportOut, filter)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) checkLogin(email, pwd string, role auth.Role) error {
	usr, err := cli.dir.Authenticate(email, pwd, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "OK: %s (%s, %s)\n", usr.Name, usr.ID, usr.Role)
	return nil
}

func (cli *commandLine) summary(ctx context.Context) error {
	sum, err := cli.svc.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Evaluated on:      %s\n", sum.EvaluatedOn)
	fmt.Fprintf(cli.out, "Total payable:     %s\n", fee.FormatAmount(sum.TotalPayable))
	fmt.Fprintf(cli.out, "Total paid:        %s (%.1f%%)\n", fee.FormatAmount(sum.TotalPaid), sum.ProgressPercentage)
	fmt.Fprintf(cli.out, "Late fee:          %s\n", fee.FormatAmount(sum.LateFee))
	fmt.Fprintf(cli.out, "Remaining balance: %s\n", fee.FormatAmount(sum.DisplayBalance))
	switch {
	case sum.IsFullyPaid:
		fmt.Fprintln(cli.out, "Status:            fully paid")
	case sum.IsOverdue:
		fmt.Fprintf(cli.out, "Status:            overdue since %s\n", sum.DueDate)
	default:
		fmt.Fprintf(cli.out, "Status:            due %s (%d days left)\n", sum.DueDate, sum.DaysLeft)
	}
	return nil
}

func (cli *commandLine) export(ctx context.Context, path string, filter fee.TransactionFilter) error {
	txns, err := cli.svc.Transactions(ctx, filter)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = fee.ExportTransactions(f, txns); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d transaction(s) written to %s\n", len(txns), path)
	return nil
}
