package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"FlertaAI_ReplyAssistant/internal/conversation"
)

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	result, err := conversation.NewParser(cfg.Parser.SelfLabels).Parse(string(raw), time.Now())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"turns":             result.Turns,
		"speakerConfidence": result.SpeakerConfidence,
		"needsConfirmation": result.NeedsConfirmation,
	})
}
