package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/docpilot/docchat/internal/core/config"
	"github.com/docpilot/docchat/internal/core/llm"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "Store the Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(dataDir)
		if err != nil {
			log.Printf("config problem, rewriting: %v", err)
		}
		cfg.APIKey = args[0]
		if err := cfg.Save(dataDir); err != nil {
			return err
		}
		fmt.Println("API key saved")
		return nil
	},
}

var configSetModelCmd = &cobra.Command{
	Use:   "set-model <model>",
	Short: "Set the model used for answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(dataDir)
		if err != nil {
			log.Printf("config problem, rewriting: %v", err)
		}
		cfg.Model = args[0]
		if err := cfg.Save(dataDir); err != nil {
			return err
		}
		fmt.Printf("Model set to %s\n", args[0])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(dataDir)
		if err != nil {
			log.Printf("config problem, showing defaults: %v", err)
		}

		fmt.Printf("data dir:    %s\n", dataDir)
		fmt.Printf("api key:     %s\n", redactKey(cfg.ResolveAPIKey()))
		fmt.Printf("model:       %s\n", orDefault(cfg.Model, llm.DefaultModel))
		fmt.Printf("theme:       %s\n", cfg.Theme)
		fmt.Printf("tts command: %s\n", orDefault(cfg.TTSCommand, "(platform default)"))
		fmt.Printf("stt command: %s\n", orDefault(cfg.STTCommand, "(none)"))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetKeyCmd, configSetModelCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func redactKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
