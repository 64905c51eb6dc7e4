package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ankisync/internal/deps"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the external toolchain and the AnkiConnect endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := false

			for _, line := range renderSectionHeader("External tools", colorize) {
				fmt.Fprintln(out, line)
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			statuses = append(statuses, deps.CheckEspeakData(cfg.Espeak.DataDir))
			for _, status := range statuses {
				kind := statusOK
				if !status.Available {
					kind = statusError
					if status.Optional {
						kind = statusWarn
					} else {
						failed = true
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, status.Detail, colorize))
			}

			for _, line := range renderSectionHeader("AnkiConnect", colorize) {
				fmt.Fprintln(out, line)
			}
			client := ctx.newStoreClient(cfg)
			version, err := client.Version(cmd.Context())
			if err != nil {
				failed = true
				fmt.Fprintln(out, renderStatusLine(cfg.Anki.URL, statusError, err.Error(), colorize))
			} else {
				detail := fmt.Sprintf("protocol version %d", version)
				fmt.Fprintln(out, renderStatusLine(cfg.Anki.URL, statusOK, detail, colorize))
			}

			if failed {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}
