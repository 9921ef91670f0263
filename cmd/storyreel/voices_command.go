package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/services/edgetts"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List available narration voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := edgetts.NewCLI(edgetts.WithBinary(cfg.TTS.Binary))
			voices, err := client.ListVoices(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(voices))
			for _, voice := range voices {
				if locale != "" && !strings.EqualFold(voice.Locale(), locale) {
					continue
				}
				name := voice.Name
				if name == cfg.TTS.Voice {
					name += " *"
				}
				rows = append(rows, []string{name, voice.Gender, voice.Locale(), voice.Categories})
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No voices match locale %q.\n", locale)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Voice", "Gender", "Locale", "Categories"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d voice(s). * marks the configured voice.\n", len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "Only show voices for a locale (e.g. ko-KR)")
	return cmd
}
