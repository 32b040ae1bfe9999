package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookprog/internal/dirs"
	"bookprog/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg) and show paths in use",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			custom, _ := cmd.Flags().GetString("ffmpeg")
			ff, ferr := deps.FindFFmpeg(custom)
			if ferr != nil {
				return &ExitError{Code: ExitMissingDep, Err: ferr}
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "FFmpeg:      %s\n", ff)
			if v, err := deps.Version(cmd.Context(), nil, ff); err == nil {
				fmt.Fprintf(w, "Version:     %s\n", v)
			} else {
				a.log.Warn("ffmpeg version probe failed", "err", err)
			}
			if cfg, err := dirs.ConfigDir(); err == nil {
				fmt.Fprintf(w, "Config dir:  %s\n", cfg)
			}
			if used := a.configFile; used != "" {
				fmt.Fprintf(w, "Config file: %s\n", used)
			}
			logFile := a.cfg.Log.File
			if logFile == "" {
				logFile, _ = dirs.DefaultLogFile()
				logFile += " (suggested, not in use)"
			}
			fmt.Fprintf(w, "Log file:    %s\n", logFile)
			fmt.Fprintf(w, "Terminal:    tui=%v width=%d\n", a.tui, a.width)
			return nil
		},
	}
	cmd.Flags().String("ffmpeg", "", "Path to ffmpeg")
	return cmd
}
