// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bytes"
	"flag"
	"maps"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ezrec/flashasm/config"
	"github.com/ezrec/flashasm/internal"
	"github.com/ezrec/flashasm/translate"
)

var (
	configPath string
	flashBase  uint32
	flashSize  uint32
	bigEndian  bool
	listing    string
	defines    []string
	lang       string
)

var rootCmd = &cobra.Command{
	Use:   "flashasm SOURCE OUTPUT",
	Short: "Assemble a source file into a flash image",
	Long: `Flashasm assembles SOURCE into a flat binary image of the board flash
and writes it to OUTPUT.

Regions of the image are opened with 'name@address:' labels. The board
memory map (flash, RAM, UART) comes from the built in defaults or from a
--config file, and is visible to $(...) expressions as FLASH_BASE,
RAM_BASE, UART_TX and friends. OUTPUT is only written when assembly
succeeds.
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Usage is only shown for command line errors.
		cmd.SilenceUsage = true
		if len(lang) != 0 {
			translate.SetLanguage(lang)
		}
		return assemble(cmd, args[0], args[1])
	},
}

func init() {
	addFlags(rootCmd.Flags())
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// addFlags binds the assembler options.
func addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&configPath, "config", "c", "", "board configuration file (.toml, .yaml)")
	flags.Uint32Var(&flashBase, "base", config.FLASH_BASE, "flash base address")
	flags.Uint32Var(&flashSize, "size", config.FLASH_SIZE, "flash size in bytes")
	flags.BoolVar(&bigEndian, "big-endian", false, "emit big-endian words")
	flags.StringVarP(&listing, "listing", "l", "", "write a listing to this file")
	flags.StringArrayVarP(&defines, "define", "D", nil, "define NAME=VALUE for expressions")
	flags.StringVar(&lang, "lang", "", "message language, overriding $"+translate.ENV_LANG)
}

// boardConfig loads the configuration and applies command line overrides.
func boardConfig(flags *pflag.FlagSet) (cfg *config.Config, err error) {
	cfg = config.Default()
	if len(configPath) != 0 {
		cfg, err = config.Load(configPath)
		if err != nil {
			return
		}
	}

	if flags.Changed("base") {
		cfg.Flash.Base = flashBase
	}
	if flags.Changed("size") {
		cfg.Flash.Size = flashSize
	}
	if bigEndian {
		cfg.ByteOrder = config.BIG_ENDIAN
	}

	// Board defines first, so the configuration and command line win.
	merged := maps.Collect(cfg.BoardDefines())
	maps.Copy(merged, cfg.Defines)
	for _, define := range defines {
		name, value, ok := strings.Cut(define, "=")
		if !ok {
			value = "1"
		}
		merged[name] = value
	}
	cfg.Defines = merged

	if glog.V(1) {
		for name, value := range internal.Sorted2(maps.All(merged)) {
			glog.Infof("define %v=%v", name, value)
		}
	}

	return
}

func assemble(cmd *cobra.Command, source string, output string) (err error) {
	cfg, err := boardConfig(cmd.Flags())
	if err != nil {
		return
	}

	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	prog, err := cfg.Assembler().Parse(inf)
	if err != nil {
		return
	}

	image, err := prog.Image()
	if err != nil {
		return
	}

	if len(listing) != 0 {
		text := &bytes.Buffer{}
		err = prog.Listing(text)
		if err != nil {
			return
		}
		err = os.WriteFile(listing, text.Bytes(), 0o644)
		if err != nil {
			return
		}
	}

	err = os.WriteFile(output, image, 0o644)
	if err != nil {
		return
	}

	glog.V(1).Infof("%v: %d bytes at 0x%08x", output, len(image), cfg.Flash.Base)
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
