// Copyright 2025 The qsim Authors
// This file is part of the qsim library.
//
// The qsim library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The qsim library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the qsim library. If not, see <http://www.gnu.org/licenses/>.

// qsim is the command-line front end: run searches and factorizations on the
// local simulator, serve the job API, or inspect the host.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/questlab/qsim/backend"
	"github.com/questlab/qsim/config"
	"github.com/questlab/qsim/grover"
	"github.com/questlab/qsim/hardware"
	"github.com/questlab/qsim/pkg/logger"
	"github.com/questlab/qsim/server"
	"github.com/questlab/qsim/shor"
	"github.com/questlab/qsim/store"
)

func main() {
	app := &cli.App{
		Name:  "qsim",
		Usage: "quantum search and factoring on a statevector simulator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
		},
		Commands: []*cli.Command{
			groverCommand(),
			factorCommand(),
			serveCommand(),
			infoCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "qsim:", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	return config.Load(c.String("config"))
}

func newBackend(c *cli.Context, cfg config.Config) (backend.Backend, error) {
	reg := backend.NewRegistry()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	reg.Register(backend.NewLocal(
		backend.WithWorkers(cfg.Workers),
		backend.WithLogger(log),
	))
	if url := c.String("remote"); url != "" {
		reg.Register(backend.NewRemote(url))
	}
	return reg.Get(c.String("backend"))
}

func groverCommand() *cli.Command {
	return &cli.Command{
		Name:  "grover",
		Usage: "search for a marked bitstring",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "qubits", Aliases: []string{"n"}, Required: true, Usage: "register size"},
			&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Required: true, Usage: "marked bitstring, qubit 0 rightmost"},
			&cli.IntFlag{Name: "shots", Value: 0, Usage: "samples to draw (default from config)"},
			&cli.Int64Flag{Name: "seed", Usage: "nonzero for reproducible sampling"},
			&cli.StringFlag{Name: "backend", Value: "local", Usage: "execution backend"},
			&cli.StringFlag{Name: "remote", Usage: "job server URL for the remote backend"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			b, err := newBackend(c, cfg)
			if err != nil {
				return err
			}
			shots := c.Int("shots")
			if shots == 0 {
				shots = cfg.DefaultShots
			}
			seed := c.Int64("seed")
			if seed == 0 {
				seed = cfg.Seed
			}

			result, err := grover.Search(c.Context, b, grover.RunConfig{
				N:      c.Int("qubits"),
				Target: c.String("target"),
				Shots:  shots,
				Seed:   seed,
			})
			if err != nil {
				return err
			}

			n := c.Int("qubits")
			fmt.Printf("job %s on %s: %d shots, %d rounds\n",
				result.JobID, result.Backend, result.Shots, grover.Iterations(n))
			printHistogram(result.Counts, 16)
			return nil
		},
	}
}

func factorCommand() *cli.Command {
	return &cli.Command{
		Name:  "factor",
		Usage: "factor an integer by quantum order finding",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "n", Required: true, Usage: "integer to factor"},
			&cli.IntFlag{Name: "attempts", Value: 8, Usage: "random bases to try"},
			&cli.IntFlag{Name: "shots", Value: 64, Usage: "samples per order-finding run"},
			&cli.Int64Flag{Name: "seed", Usage: "nonzero for reproducible runs"},
			&cli.StringFlag{Name: "backend", Value: "local", Usage: "execution backend"},
			&cli.StringFlag{Name: "remote", Usage: "job server URL for the remote backend"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			b, err := newBackend(c, cfg)
			if err != nil {
				return err
			}

			p, q, err := shor.Factor(c.Context, b, shor.FactorConfig{
				N:        c.Uint64("n"),
				Attempts: c.Int("attempts"),
				Shots:    c.Int("shots"),
				Seed:     c.Int64("seed"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("%d = %d * %d\n", c.Uint64("n"), p, q)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the job server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (default from config)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if addr := c.String("addr"); addr != "" {
				cfg.Addr = addr
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("creating data dir: %w", err)
			}
			st, err := store.Open(filepath.Join(cfg.DataDir, "runs.db"))
			if err != nil {
				return err
			}
			defer st.Close()

			local := backend.NewLocal(
				backend.WithWorkers(cfg.Workers),
				backend.WithLogger(log),
			)
			srv := server.New(local, st, log, cfg.DefaultShots)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "report host simulation capacity",
		Action: func(c *cli.Context) error {
			info := hardware.Detect()
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Property", "Value"})
			table.Append([]string{"CPU", info.CPUModel})
			table.Append([]string{"Logical cores", strconv.Itoa(info.LogicalCores)})
			table.Append([]string{"Total memory", fmt.Sprintf("%.1f GiB", float64(info.TotalMemory)/(1<<30))})
			table.Append([]string{"Free memory", fmt.Sprintf("%.1f GiB", float64(info.FreeMemory)/(1<<30))})
			table.Append([]string{"Max qubits", strconv.Itoa(info.MaxQubits)})
			table.Append([]string{"Workers", strconv.Itoa(info.Workers)})
			table.Render()
			return nil
		},
	}
}

// printHistogram renders the top outcomes as a table, most frequent first.
func printHistogram(counts backend.Counts, limit int) {
	total := counts.Total()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Outcome", "Count", "Probability"})
	for i, key := range counts.Sorted() {
		if i >= limit {
			break
		}
		table.Append([]string{
			key,
			strconv.Itoa(counts[key]),
			fmt.Sprintf("%.4f", counts.Probability(key)),
		})
	}
	table.Render()
	if len(counts) > limit {
		fmt.Printf("(%d more outcomes, %d shots total)\n", len(counts)-limit, total)
	} else {
		fmt.Printf("(%d shots total)\n", total)
	}
}
