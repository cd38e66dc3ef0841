package cmd

import (
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/LQM2015/stm32/pkg/log"
	"github.com/LQM2015/stm32/pkg/reorder"
)

func RootCmd() *cobra.Command {
	opts := struct {
		Profile         bool
		Debug           bool
		PreserveNonLoad bool
	}{
		false,
		false,
		false,
	}

	rootCmd := &cobra.Command{
		Use:           "elf2stldr <input.elf> <output.stldr>",
		Short:         "elf2stldr rewrites a firmware ELF into the flash-loader layout",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Debug {
				log.EnableDebug()
			}

			if opts.Profile {
				file, err := os.Create("cpu.pprof")
				if err != nil {
					return err
				}

				pprof.StartCPUProfile(file)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Profile {
				pprof.StopCPUProfile()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			var ropts []reorder.Option
			if opts.PreserveNonLoad {
				ropts = append(ropts, reorder.PreserveNonLoad())
			}
			return reorder.ReorderFile(args[0], args[1], ropts...)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.Profile, "profile", "p", false, "enable profiling")
	rootCmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "enable debugging")
	rootCmd.Flags().BoolVar(&opts.PreserveNonLoad, "preserve-non-load", false,
		"keep non-LOAD program headers in the relocated table")

	return rootCmd
}
