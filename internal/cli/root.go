package cli

import (
	"github.com/mgpai22/subplay/internal/config"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose    bool
	configFile string
	logger     *logging.Logger
	cfg        *config.Config
	v          = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "subplay",
	Short: "Subtitle player that keeps SRT and ASS subtitles in sync with a video",
	Long: `Subplay overlays external subtitles on a playing video.

SRT cues are drawn by subplay itself, ASS files are handed to a renderer.
Subtitles can be shown in a terminal against a simulated clock, or over
the video element of a web page in a browser it controls. A running
player is remote controlled over a small HTTP message endpoint.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		if err := bindFlags(v, cmd); err != nil {
			return err
		}
		loaded, err := config.Load(v, configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// flags that share a name with a config key override it
var flagKeys = map[string]string{
	"addr":           config.KeyHTTPAddr,
	"settings-file":  config.KeySettingsFile,
	"frame-interval": config.KeyFrameInterval,
	"headless":       config.KeyBrowserHeadless,
	"video-selector": config.KeyVideoSelector,
	"container":      config.KeyContainerSelector,
	"width":          config.KeyTerminalWidth,
	"height":         config.KeyTerminalHeight,
	"provider":       config.KeyTranslateProvider,
	"model":          config.KeyTranslateModel,
	"batch-size":     config.KeyTranslateBatchSize,
	"concurrency":    config.KeyTranslateConcurrency,
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "Config file (default: ./subplay.yaml or user config dir)")
	rootCmd.PersistentFlags().
		String("settings-file", "", "File where display settings are persisted")
}
