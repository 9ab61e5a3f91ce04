package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/common/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tellytv/m3utidy/internal/commands"
	"github.com/tellytv/m3utidy/internal/context"
)

const namespace = "m3utidy"

func main() {
	os.Exit(execute(newRootCmd(), os.Args[1:]))
}

// execute runs root with args and reports any error, usage errors included,
// on the command's error output. It returns the process exit status.
func execute(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	setDefaults()

	root := &cobra.Command{
		Use:           namespace,
		Short:         "Sort IPTV playlists into sections and copy channel logos between them",
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	flags := root.PersistentFlags()
	globalFlags(flags)
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	logos := &cobra.Command{
		Use:   "logos",
		Short: "Copy tvg-logo values from the reference playlist into the main playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(cc *context.CContext, opts commands.Options) error {
				_, err := commands.ReplaceLogos(cc, opts)
				return err
			})
		},
	}
	logos.Flags().String("reference", commands.DefaultReference, "Reference playlist logos are taken from, relative to --dir")
	if err := viper.BindPFlag("reference", logos.Flags().Lookup("reference")); err != nil {
		panic(err)
	}

	organize := &cobra.Command{
		Use:   "organize",
		Short: "Group the main playlist by category with section banners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(cc *context.CContext, opts commands.Options) error {
				_, err := commands.Organize(cc, opts)
				return err
			})
		},
	}

	root.AddCommand(organize, logos)
	return root
}

func globalFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a YAML, TOML or JSON config file")
	flags.String("dir", ".", "Directory searched for the main playlist")
	flags.String("playlist", "", "Main playlist to use instead of searching --dir")
	flags.Bool("dry-run", false, "Print the result instead of writing it, no backup is made")
	flags.String("log.level", logrus.InfoLevel.String(), "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error, fatal]")
	flags.String("metrics-file", "", "Write run metrics in the Prometheus text format to this file")
	flags.String("encoding", "utf-8", "Charset of the input playlists: utf-8, latin1, iso-8859-15 or windows-1252")
	flags.String("match.zero-strip", "legacy", "Leading zero removal when matching names: legacy or token")
}

func loadConfig() error {
	viper.SetEnvPrefix(namespace)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "error reading config file %s", path)
		}
	}
	return nil
}

func run(command func(*context.CContext, commands.Options) error) error {
	cc, err := context.NewCContext(viper.GetString("log.level"))
	if err != nil {
		return err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		cc.Log.WithField("file", used).Debugln("Loaded config file")
	}

	opts, err := commandOptions(os.Stdout)
	if err != nil {
		return err
	}

	return command(cc, opts)
}
