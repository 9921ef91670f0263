package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage storyreel configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "staging_dir:    %s\n", cfg.Paths.StagingDir)
			fmt.Fprintf(out, "log_dir:        %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "tts voice:      %s (rate %s, concurrency %d)\n", cfg.TTS.Voice, cfg.TTS.Rate, cfg.TTS.Concurrency)
			fmt.Fprintf(out, "whisper:        enabled=%s model=%s\n", yesNo(cfg.Whisper.Enabled), cfg.Whisper.Model)
			fmt.Fprintf(out, "captions:       %s burn_in=%s max_line=%d\n", cfg.Captions.Format, yesNo(cfg.Captions.BurnIn), cfg.Captions.MaxLineChars)
			fmt.Fprintf(out, "output:         %dx%d@%dfps %s crf=%d\n", cfg.Output.Width, cfg.Output.Height, cfg.Output.FPS, cfg.Output.VideoCodec, cfg.Output.CRF)
			fmt.Fprintf(out, "tolerances:     segment=%.2fs track=%.2fs\n", cfg.Reconcile.SegmentToleranceSeconds, cfg.Reconcile.TrackToleranceSeconds)
			return nil
		},
	}
}
