package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// annotationTUI marks commands that own the terminal; they never log to it.
const annotationTUI = "ie.tui"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	app := &app{}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "ie",
		Short:         "Inline edit (ie): edit documents in place with autosave",
		Long:          "ie edits documents in place: changes are buffered, recorded for undo and saved automatically after a quiet period.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd, v, configFile)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ~/.inline-edit/config.toml)")
	flags.String("backend", "", "document backend: markdown or toml")
	flags.String("documents", "", "documents directory (markdown) or file (toml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	_ = v.BindPFlag("documents.backend", flags.Lookup("backend"))
	_ = v.BindPFlag("documents.path", flags.Lookup("documents"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newDocCmd(app),
		newEditCmd(app),
	)

	return rootCmd
}
