package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debateroom/internal/config"
)

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "debated",
		Short: "Real-time two-sided debate rooms",
		Long: `debated serves debate topics where participants argue "for" or "against"
over a websocket chat, and inspects running servers and archived transcripts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./debateroom.yaml)")
	flags.String("log-level", config.Default().LogLevel, "DEBUG, INFO, WARN or ERROR")
	_ = v.BindPFlag(config.LogLevelKey, flags.Lookup("log-level"))

	root.AddCommand(newServeCmd(v), newTopicsCmd(v), newTranscriptCmd(v))
	return root
}

// bindFlags binds cmd's flags to config keys when cmd runs, so subcommands
// sharing a key do not steal each other's binding.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for name, key := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
