package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debateroom/internal/config"
	"debateroom/internal/debate"
)

func newTopicsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List the topics of a running server",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd, map[string]string{"server": config.ServerURLKey})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			topics, err := fetchTopics(ctx, cfg.ServerURL)
			if err != nil {
				return err
			}
			if len(topics) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No debates yet.")
				return nil
			}
			renderTopics(cmd.OutOrStdout(), topics)
			return nil
		},
	}
	cmd.Flags().String("server", config.Default().ServerURL, "base URL of the debate server")
	return cmd
}

func fetchTopics(ctx context.Context, serverURL string) ([]debate.Snapshot, error) {
	url := strings.TrimRight(serverURL, "/") + "/api/topics"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list topics: unexpected status %s", resp.Status)
	}
	var topics []debate.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&topics); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	return topics, nil
}
