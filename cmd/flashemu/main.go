// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/ezrec/flashasm/config"
	"github.com/ezrec/flashasm/emulator"
)

var (
	configPath string
	bigEndian  bool
	limit      int
	dump       bool
)

var rootCmd = &cobra.Command{
	Use:   "flashemu IMAGE",
	Short: "Run a flash image on the simulated board",
	Long: `Flashemu loads IMAGE into the board flash, resets the processor to the
flash base and runs until HALT. Bytes sent to the UART are written to
standard output.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Usage is only shown for command line errors.
		cmd.SilenceUsage = true
		return run(args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "board configuration file (.toml, .yaml)")
	flags.BoolVar(&bigEndian, "big-endian", false, "the image and bus are big-endian")
	flags.IntVarP(&limit, "limit", "n", 0, "stop after this many instructions, 0 for no limit")
	flags.BoolVar(&dump, "dump", false, "print the registers when the run ends")

	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// run executes an image, sending UART bytes to stdout and diagnostics to stderr.
func run(path string, stdout io.Writer, stderr io.Writer) (err error) {
	cfg := config.Default()
	if len(configPath) != 0 {
		cfg, err = config.Load(configPath)
		if err != nil {
			return
		}
	}
	if bigEndian {
		cfg.ByteOrder = config.BIG_ENDIAN
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return
	}

	emu := emulator.NewEmulator(cfg)
	emu.Uart.Output = stdout
	emu.Cpu.Dump = stderr

	err = emu.Load(image)
	if err != nil {
		return
	}

	err = emu.Run(limit)
	if dump || err != nil {
		fmt.Fprint(stderr, emu.Cpu.String())
	}

	glog.V(1).Infof("%v: %d instructions", path, emu.Cpu.Ticks)
	return
}

func main() {
	defer glog.Flush()

	err := rootCmd.Execute()
	if err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
