// This file is part of PBD.
//
// PBD is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// PBD is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with PBD. If not, see <https://www.gnu.org/licenses/>.

// Package config defines PBD's command-line surface with
// cobra, layering persisted defaults from an optional ~/.pbd.yaml read with
// viper: explicit flags always win, the config file only fills in what the
// user left unset.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Theldus/PBD/curated"
)

// Options is the fully-resolved, validated configuration for one run.
type Options struct {
	Executable string
	FunctionName string
	Args []string

	ShowLines bool
	Context int
	OnlyLocals bool
	OnlyGlobals bool
	IgnoreList []string
	WatchList []string
	OutputPath string

	DumpAll bool

	StaticAnalysis bool
	Include []string
	Define []string
	Undefine []string
	Standard string
	AvoidEqualStatements bool

	LiveStats bool
}

// NewRootCommand builds the cobra command tree. run is invoked once flags
// are parsed and validated, with the resolved Options.
func NewRootCommand(run func(*Options) error) *cobra.Command {
	opts := &Options{}
	var cfgFile string

	root := &cobra.Command{
		Use: "pbd executable function_name [executable_args...]",
		Short: "PBD traces one function of a running process and reports variable changes",
		Long: `PBD is an external, non-intrusive debugger: it plants software
breakpoints at the start of every statement in a named function and prints a
line-accurate notification whenever a watched variable's value changes.`,
		Args: cobra.MinimumNArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validate(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Executable = args[0]
			opts.FunctionName = args[1]
			opts.Args = args[2:]
			return run(opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.pbd.yaml)")
	flags.BoolVar(&opts.ShowLines, "show-lines", true, "print source line text alongside each notification")
	flags.IntVar(&opts.Context, "context", 0, "lines of source context to show around a change")
	flags.BoolVar(&opts.OnlyLocals, "only-locals", false, "watch only local variables")
	flags.BoolVar(&opts.OnlyGlobals, "only-globals", false, "watch only global/static variables")
	flags.StringSliceVar(&opts.IgnoreList, "ignore-list", nil, "comma-separated variable names to never report")
	flags.StringSliceVar(&opts.WatchList, "watch-list", nil, "comma-separated variable names to exclusively report (mutually exclusive with --ignore-list)")
	flags.StringVar(&opts.OutputPath, "output", "", "redirect all emitted messages to this path instead of stdout")
	flags.BoolVar(&opts.DumpAll, "dump-all", false, "print the resolved debug-info summary and breakpoint list, then exit")
	flags.BoolVar(&opts.StaticAnalysis, "static-analysis", false, "narrow the breakpoint set to assignment-bearing statement lines")
	flags.StringSliceVar(&opts.Include, "include", nil, "additional include directories for the static-analysis C parser")
	flags.StringSliceVar(&opts.Define, "define", nil, "additional -D macro definitions for the static-analysis C parser")
	flags.StringSliceVar(&opts.Undefine, "undefine", nil, "additional -U macro undefinitions for the static-analysis C parser")
	flags.StringVar(&opts.Standard, "std", "c11", "C standard for the static-analysis parser (c89, c99, c11)")
	flags.BoolVar(&opts.AvoidEqualStatements, "avoid-equal-statements", false, "collapse compiler-duplicated statement addresses down to one breakpoint per line (unsafe: may misattribute the reported line)")
	flags.BoolVar(&opts.LiveStats, "live-stats", false, "serve a live runtime stats dashboard for the duration of the trace")

	cobra.OnInitialize(func() { initViper(cfgFile, opts) })

	return root
}

// initViper reads ~/.pbd.yaml (or the file named by --config) and uses any
// values found there as defaults for flags the user left unset: explicit
// flags win, the file fills the rest.
func initViper(cfgFile string, opts *Options) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pbd")
	}

	if err := viper.ReadInConfig(); err != nil {
		return
	}

	if len(opts.IgnoreList) == 0 {
		opts.IgnoreList = viper.GetStringSlice("ignore-list")
	}
	if len(opts.WatchList) == 0 {
		opts.WatchList = viper.GetStringSlice("watch-list")
	}
	if opts.OutputPath == "" {
		opts.OutputPath = viper.GetString("output")
	}
	if opts.Context == 0 {
		opts.Context = viper.GetInt("context")
	}
}

// validate enforces this debugger's pre-flight ConflictingFlags rule.
func validate(opts *Options) error {
	if len(opts.IgnoreList) > 0 && len(opts.WatchList) > 0 {
		return curated.Errorf(curated.ConflictingFlags, "--ignore-list and --watch-list are mutually exclusive")
	}
	if opts.OnlyLocals && opts.OnlyGlobals {
		return curated.Errorf(curated.ConflictingFlags, "--only-locals and --only-globals are mutually exclusive")
	}
	return nil
}

// ConfigPath reports the default persisted-config path, for diagnostics.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pbd.yaml")
}

// Watched reports whether name passes the resolved ignore/watch filter.
func (o *Options) Watched(name string) bool {
	if len(o.WatchList) > 0 {
		return contains(o.WatchList, name)
	}
	return !contains(o.IgnoreList, name)
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
