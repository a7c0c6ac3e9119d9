package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/mgpai22/subplay/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate an SRT file using AI",
	Long: `Translate the cues of an SRT file and write the result as a new SRT file.

The default mode is overlay: the translated line is shown first with the
original underneath, which is what play --translate-to does on the fly.

Examples:
  subplay translate movie.srt --to japanese
  subplay translate movie.srt --to es --mode replace -o movie.es.srt
  subplay translate movie.srt --to german --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("output", "o", "", "Output file path (default: <name>.<lang>.srt)")
	addTranslateFlags(translateCmd, "to")
	_ = translateCmd.MarkFlagRequired("to")
}

// addTranslateFlags registers the provider flags shared by play and
// translate. langFlag names the target language flag.
func addTranslateFlags(cmd *cobra.Command, langFlag string) {
	cmd.Flags().
		String(langFlag, "", "Target language for translation")
	cmd.Flags().
		StringP("language", "l", "", "Language of the subtitle file (optional)")
	cmd.Flags().
		String("mode", "overlay", "How translations are shown (overlay, replace)")
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	cmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	cmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	cmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	cmd.Flags().
		String("prompt", "", "Additional instructions for the translator")
	cmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers")
	cmd.Flags().
		Int("batch-size", 0, "Number of subtitle entries per API request")
}

// translatorFromFlags returns ok=false when no target language was asked
// for.
func translatorFromFlags(
	ctx context.Context,
	cmd *cobra.Command,
	langFlag string,
) (translate.Translator, bool, error) {
	targetLang, _ := cmd.Flags().GetString(langFlag)
	if targetLang == "" {
		return nil, false, nil
	}

	inputLang, _ := cmd.Flags().GetString("language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	prompt, _ := cmd.Flags().GetString("prompt")

	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return nil, false, fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	provider := translate.Provider(cfg.Translate.Provider)
	apiKey = provider.APIKey(apiKey)
	if apiKey == "" {
		return nil, false, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	if !modelOverride {
		if err := translate.ValidateModel(provider, cfg.Translate.Model); err != nil {
			return nil, false, fmt.Errorf("%w (use --model-override to bypass)", err)
		}
	}

	tr, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          cfg.Translate.Model,
		Prompt:         prompt,
		BatchSize:      cfg.Translate.BatchSize,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create translator: %w", err)
	}
	return tr, true, nil
}

// translateDocument returns a new SRT document with translated cues.
func translateDocument(
	ctx context.Context,
	cmd *cobra.Command,
	tr translate.Translator,
	doc *subtitle.Document,
) (*subtitle.Document, error) {
	if doc.Format != subtitle.FormatSRT {
		return nil, fmt.Errorf("translation is only supported for SRT files, got %s", doc.Format)
	}

	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := translate.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}

	logger.Infow("Translating subtitles",
		"file", doc.Name,
		"cues", len(doc.Cues),
		"provider", cfg.Translate.Provider,
		"concurrency", cfg.Translate.Concurrency,
	)

	cues, err := translate.TranslateCues(ctx, tr, doc.Cues, cfg.Translate.Concurrency, mode)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	return subtitle.NewDocument(doc.Name, subtitle.FormatSRT, subtitle.EncodeSRT(cues))
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	subtitlePath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	targetLang, _ := cmd.Flags().GetString("to")

	doc, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to open subtitle: %w", err)
	}

	tr, _, err := translatorFromFlags(ctx, cmd, "to")
	if err != nil {
		return err
	}

	translated, err := translateDocument(ctx, cmd, tr, doc)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = translatedPath(subtitlePath, targetLang)
	}
	if err := subtitle.WriteSRT(translated.Cues, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitle: %w", err)
	}

	logger.Infow("Translation complete", "output", outputPath, "cues", len(translated.Cues))
	return nil
}

// movie.srt + "Japanese" -> movie.japanese.srt
func translatedPath(path, lang string) string {
	ext := filepath.Ext(path)
	lang = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), " ", "-"))
	return strings.TrimSuffix(path, ext) + "." + lang + ".srt"
}
