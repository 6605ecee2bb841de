package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/muditbhargava66/jtag-testctl/plan"
	"github.com/muditbhargava66/jtag-testctl/runner"
)

// maintenanceFlags are shared by the subcommands that invoke a single
// build-tool target outside a supervised run.
var maintenanceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "build-tool",
		Value: "make",
		Usage: "Build tool to invoke",
	},
	&cli.StringFlag{
		Name:  "project-root",
		Value: ".",
		Usage: "Root of the verification project",
	},
}

// CleanCommand defines the "clean" command for removing all generated results.
func CleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove all generated results (simulation logs, netlists, coverage)",
		Flags: maintenanceFlags,
		Action: func(c *cli.Context) error {
			builder := plan.NewBuilder(c.String("build-tool"), nil)
			return runTarget(c, builder.Clean())
		},
	}
}

// CheckEnvCommand defines the "check-env" command for verifying the tool environment.
func CheckEnvCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-env",
		Usage: "Check that the simulation and synthesis tools are available",
		Flags: maintenanceFlags,
		Action: func(c *cli.Context) error {
			builder := plan.NewBuilder(c.String("build-tool"), nil)
			return runTarget(c, builder.CheckEnv())
		},
	}
}

// ReportCommand defines the "report" command for generating and opening the HTML report.
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Generate the HTML report and open it",
		Flags: maintenanceFlags,
		Action: func(c *cli.Context) error {
			builder := plan.NewBuilder(c.String("build-tool"), nil)
			return runTarget(c, builder.Report())
		},
	}
}

// runTarget executes one command, echoing its output, and fails on a nonzero exit.
func runTarget(c *cli.Context, spec plan.CommandSpec) error {
	procs := runner.NewExecRunner(c.String("project-root"), log.New())

	proc, err := procs.Start(spec)
	if err != nil {
		return err
	}
	for line := range proc.Lines() {
		fmt.Println(line.Text)
	}
	if outcome := proc.Wait(); outcome.Code != 0 {
		return fmt.Errorf("%q exited with code %d", spec.String(), outcome.Code)
	}
	return nil
}
