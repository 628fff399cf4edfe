// Package main implements a command line tool to run an auction ledger
// locally against a bbolt database. Every command executes a transaction
// through the native execution service, exactly as the platform would,
// inside one atomic database update.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/gavelchain/gavel"
	"github.com/gavelchain/gavel/contracts/auction"
	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/core/access/acl"
	"github.com/gavelchain/gavel/core/bank"
	"github.com/gavelchain/gavel/core/execution"
	"github.com/gavelchain/gavel/core/execution/native"
	"github.com/gavelchain/gavel/core/store"
	"github.com/gavelchain/gavel/core/store/kv"
	"github.com/gavelchain/gavel/core/txn"
	"github.com/gavelchain/gavel/core/txn/plain"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

var bucketName = []byte("gavel")

// accessKey is the credential identifier of the operator guard.
var accessKey = []byte("gavel:operator")

func main() {
	err := run(os.Args)
	if err != nil {
		gavel.Logger.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) error {
	app := &cli.App{
		Name:  "gavel",
		Usage: "single-asset English auction ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "path of the ledger database",
				Value: "gavel.db",
			},
			&cli.StringFlag{
				Name:     "identity",
				Usage:    "address of the caller",
				Required: true,
			},
			&cli.Int64Flag{
				Name:  "now",
				Usage: "ledger time as unix seconds, defaults to the wall clock",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "open",
				Usage: "create the auction, the caller becomes the operator",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "floor",
						Usage: "floor price in token units",
						Value: 100,
					},
					&cli.DurationFlag{
						Name:  "duration",
						Usage: "length of the bidding interval",
						Value: time.Hour,
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "optional YAML file overriding the auction constants",
					},
				},
				Action: openAction,
			},
			{
				Name:  "faucet",
				Usage: "credit the caller's account",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "amount",
						Usage:    "amount to credit in token units",
						Required: true,
					},
				},
				Action: faucetAction,
			},
			{
				Name:  "bid",
				Usage: "place a bid",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "value",
						Usage:    "bid value in token units",
						Required: true,
					},
				},
				Action: bidAction,
			},
			{
				Name:   "close",
				Usage:  "close the auction once expired",
				Action: closeAction,
			},
			{
				Name:   "winner",
				Usage:  "display the winner once closed",
				Action: winnerAction,
			},
			{
				Name:   "bids",
				Usage:  "display the full bid log",
				Action: bidsAction,
			},
			{
				Name:   "events",
				Usage:  "display the notification log",
				Action: eventsAction,
			},
			{
				Name:   "settle",
				Usage:  "pay out the losing bidders and the operator",
				Action: settleAction,
			},
			{
				Name:   "balance",
				Usage:  "display the caller's account balance",
				Action: balanceAction,
			},
		},
	}

	return app.Run(args)
}

// fileConfig is the YAML schema of the auction constants.
type fileConfig struct {
	Floor           uint64 `yaml:"floor"`
	Duration        string `yaml:"duration"`
	ExtensionWindow string `yaml:"extension_window"`
	ExtensionAmount string `yaml:"extension_amount"`
	Increment       string `yaml:"increment"`
	Commission      string `yaml:"commission"`
}

func makeConfig(c *cli.Context) (auction.Config, error) {
	cfg := auction.DefaultConfig(c.Uint64("floor"), c.Duration("duration"))

	path := c.String("config")
	if path == "" {
		return cfg, nil
	}

	buffer, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, xerrors.Errorf("failed to read config: %v", err)
	}

	file := fileConfig{}

	err = yaml.Unmarshal(buffer, &file)
	if err != nil {
		return cfg, xerrors.Errorf("failed to parse config: %v", err)
	}

	if file.Floor > 0 {
		cfg.FloorPrice = file.Floor
	}

	durations := []struct {
		value string
		dst   *time.Duration
	}{
		{file.Duration, &cfg.Duration},
		{file.ExtensionWindow, &cfg.ExtensionWindow},
		{file.ExtensionAmount, &cfg.ExtensionAmount},
	}

	for _, d := range durations {
		if d.value == "" {
			continue
		}

		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return cfg, xerrors.Errorf("failed to parse duration: %v", err)
		}

		*d.dst = parsed
	}

	fractions := []struct {
		value string
		dst   *decimal.Decimal
	}{
		{file.Increment, &cfg.IncrementFraction},
		{file.Commission, &cfg.CommissionFraction},
	}

	for _, f := range fractions {
		if f.value == "" {
			continue
		}

		parsed, err := decimal.NewFromString(f.value)
		if err != nil {
			return cfg, xerrors.Errorf("failed to parse fraction: %v", err)
		}

		*f.dst = parsed
	}

	return cfg, nil
}

func makeContract(cfg auction.Config) auction.Contract {
	return auction.NewContract(cfg, accessKey, acl.NewService(), bank.NewService())
}

func ledgerTime(c *cli.Context) time.Time {
	now := c.Int64("now")
	if now != 0 {
		return time.Unix(now, 0)
	}

	return time.Now()
}

func identity(c *cli.Context) access.Address {
	return access.NewAddress(c.String("identity"))
}

// execute runs one transaction of the auction contract inside an atomic
// database update.
func execute(c *cli.Context, contract auction.Contract, args ...txn.Arg) error {
	db, err := kv.New(c.String("db"))
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	defer db.Close()

	exec := native.NewExecution()
	auction.RegisterContract(exec, contract)

	args = append(args, txn.Arg{
		Key:   native.ContractArg,
		Value: []byte(auction.ContractName),
	})

	tx, err := plain.NewManager(identity(c)).Make(args...)
	if err != nil {
		return xerrors.Errorf("failed to make tx: %v", err)
	}

	step := execution.Step{
		Current:   tx,
		Timestamp: ledgerTime(c),
	}

	return db.Update(func(dbtx kv.WritableTx) error {
		bucket, err := dbtx.GetBucketOrCreate(bucketName)
		if err != nil {
			return xerrors.Errorf("failed to open bucket: %v", err)
		}

		res, err := exec.Execute(kv.NewSnapshot(bucket), step)
		if err != nil {
			return xerrors.Errorf("execution failed: %v", err)
		}

		if !res.Accepted {
			return xerrors.Errorf("transaction rejected: %s", res.Message)
		}

		return nil
	})
}

// view runs a read-only function against the ledger state.
func view(c *cli.Context, fn func(snap store.Readable) error) error {
	db, err := kv.New(c.String("db"))
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	defer db.Close()

	return db.View(func(dbtx kv.ReadableTx) error {
		bucket := dbtx.GetBucket(bucketName)
		if bucket == nil {
			return xerrors.New("ledger is empty")
		}

		return fn(kv.NewSnapshot(bucket))
	})
}

func openAction(c *cli.Context) error {
	cfg, err := makeConfig(c)
	if err != nil {
		return err
	}

	err = execute(c, makeContract(cfg), txn.Arg{
		Key:   auction.CmdArg,
		Value: []byte(auction.CmdOpen),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "auction opened")

	return nil
}

func faucetAction(c *cli.Context) error {
	db, err := kv.New(c.String("db"))
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	defer db.Close()

	amount := c.Uint64("amount")

	err = db.Update(func(dbtx kv.WritableTx) error {
		bucket, err := dbtx.GetBucketOrCreate(bucketName)
		if err != nil {
			return xerrors.Errorf("failed to open bucket: %v", err)
		}

		return bank.NewService().Deposit(kv.NewSnapshot(bucket), identity(c), amount)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "credited %d to %s\n", amount, identity(c))

	return nil
}

func bidAction(c *cli.Context) error {
	value := fmt.Sprintf("%d", c.Uint64("value"))

	err := execute(c, makeContract(auction.DefaultConfig(0, time.Hour)),
		txn.Arg{Key: auction.CmdArg, Value: []byte(auction.CmdBid)},
		txn.Arg{Key: auction.ValueArg, Value: []byte(value)},
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "bid submitted")

	return nil
}

func closeAction(c *cli.Context) error {
	err := execute(c, makeContract(auction.DefaultConfig(0, time.Hour)), txn.Arg{
		Key:   auction.CmdArg,
		Value: []byte(auction.CmdClose),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "close submitted")

	return nil
}

func winnerAction(c *cli.Context) error {
	contract := makeContract(auction.DefaultConfig(0, time.Hour))

	return view(c, func(snap store.Readable) error {
		winner, err := contract.GetWinner(snap)
		if err != nil {
			return err
		}

		if !winner.Decided {
			fmt.Fprintln(c.App.Writer, "undecided")

			return nil
		}

		fmt.Fprintf(c.App.Writer, "winner=%s value=%d\n", winner.Bidder, winner.Value)

		return nil
	})
}

func bidsAction(c *cli.Context) error {
	contract := makeContract(auction.DefaultConfig(0, time.Hour))

	return view(c, func(snap store.Readable) error {
		records, err := contract.ListBids(snap)
		if err != nil {
			return err
		}

		for _, record := range records {
			fmt.Fprintf(c.App.Writer, "%s=%d at %d\n", record.Bidder, record.Value, record.Timestamp)
		}

		return nil
	})
}

func eventsAction(c *cli.Context) error {
	contract := makeContract(auction.DefaultConfig(0, time.Hour))

	return view(c, func(snap store.Readable) error {
		events, err := contract.ListEvents(snap)
		if err != nil {
			return err
		}

		for _, event := range events {
			switch event.Kind {
			case auction.EventExtended:
				fmt.Fprintf(c.App.Writer, "%s end=%d\n", event.Kind, event.EndTime)
			default:
				fmt.Fprintf(c.App.Writer, "%s %s=%d\n", event.Kind, event.Bidder, event.Value)
			}
		}

		return nil
	})
}

func settleAction(c *cli.Context) error {
	err := execute(c, makeContract(auction.DefaultConfig(0, time.Hour)), txn.Arg{
		Key:   auction.CmdArg,
		Value: []byte(auction.CmdSettle),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "settle submitted")

	return nil
}

func balanceAction(c *cli.Context) error {
	return view(c, func(snap store.Readable) error {
		balance, err := bank.NewService().Balance(snap, identity(c))
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "%d\n", balance)

		return nil
	})
}
