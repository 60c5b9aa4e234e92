package main

import (
	"errors"
	"fmt"

	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debateroom/internal/archive"
	"debateroom/internal/config"
)

func newTranscriptCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript [topic-id]",
		Short: "Read archived transcripts",
		Long: `Without an argument, lists the topics stored in the archive. With a topic id,
prints that topic's transcript in order.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd, map[string]string{"archive": config.ArchivePathKey})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if cfg.ArchivePath == "" {
				return errors.New("no archive configured: pass --archive or set DEBATE_ARCHIVE_PATH")
			}
			db, err := archive.OpenReadOnly(cfg.ArchivePath)
			if err != nil {
				return err
			}
			defer db.Close()
			repository := archive.NewTranscriptRepository(db, logs.GetLoggerFromString(cfg.LogLevel))

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				topics, err := repository.Topics()
				if err != nil {
					return err
				}
				if len(topics) == 0 {
					fmt.Fprintln(out, "Archive is empty.")
					return nil
				}
				renderTopics(out, topics)
				return nil
			}

			messages, err := repository.Messages(args[0])
			if err != nil {
				return fmt.Errorf("topic %s: %w", args[0], err)
			}
			renderTranscript(out, messages)
			return nil
		},
	}
	cmd.Flags().String("archive", "", "badger directory written by serve")
	return cmd
}
