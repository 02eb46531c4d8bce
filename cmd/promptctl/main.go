package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/norvik-labs/promptctl/internal/config"
	"github.com/spf13/cobra"
)

type cliState struct {
	configPath string
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
	stdoutWriter io.Writer = os.Stdout
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errEvalFailed) {
			osExit(1)
			return
		}
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "promptctl",
		Short:         "Push, pull, and evaluate prompts in the registry",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")

	root.AddCommand(newEvalCmd(st))
	root.AddCommand(newPushCmd(st))
	root.AddCommand(newPullCmd(st))
	root.AddCommand(newCheckCmd(st))
	root.AddCommand(newHistoryCmd(st))
	return root
}

func loadConfigInto(st *cliState) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(st.configPath)
		if err != nil {
			return err
		}
		st.cfg = cfg
		return nil
	}
}

// reportCredentialProblems prints one remediation line per missing
// credential and says whether the run may proceed.
func reportCredentialProblems(problems []config.Problem) bool {
	if len(problems) == 0 {
		return true
	}
	fmt.Fprintln(stderrWriter, "missing configuration:")
	for _, p := range problems {
		fmt.Fprintf(stderrWriter, "  - %s: %s\n", p.Key, p.Remediation)
	}
	return false
}
