package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"papertrade/cmd/seeder"
	"papertrade/cmd/sweeper"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Papertrade CMD"
	app.Usage = "The papertrade command line interface"

	app.Commands = []cli.Command{
		sweeperCMD,
		seederCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	sweeperCMD = cli.Command{
		Name:      "sweep",
		Usage:     "run the trigger evaluator",
		Action:    sweeperAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "once",
				Usage: "run a single sweep and exit",
			},
		},
		Description: `Run the order and alert sweep loops`,
	}
	seederCMD = cli.Command{
		Name:      "seed",
		Usage:     "create a demo account",
		Action:    seederAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "username",
				Value: "demo",
			},
			cli.StringFlag{
				Name:  "email",
				Value: "demo@example.com",
			},
			cli.StringFlag{
				Name:  "password",
				Value: "demo1234",
			},
		},
		Description: `Create a demo account with the starting endowment`,
	}
)

func sweeperAction(c *cli.Context) error {
	logrus.Info("Starting sweeper CMD")

	s := &sweeper.Sweeper{Once: c.Bool("once")}
	if err := s.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func seederAction(c *cli.Context) error {
	logrus.Info("Starting seeder CMD")

	s := &seeder.Seeder{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: c.String("password"),
	}
	if err := s.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
