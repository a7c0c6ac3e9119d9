package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/subplay/internal/player"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/mgpai22/subplay/internal/transport"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [action] [subtitle_file]",
	Short: "Send a message to a running player",
	Long: `Send one protocol message to a player started with "subplay serve" or
"subplay attach" and print its JSON response.

Actions: load (loadSubtitle), clear (clearSubtitle),
settings (updateSettings), status (getSubtitleStatus).

Examples:
  subplay send load movie.srt
  subplay send load movie.txt --type ass
  subplay send settings --set fontSize=32 --set srtTextColor=#ffff00
  subplay send status`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().
		String("addr", "", "Address of the player's message endpoint")
	sendCmd.Flags().
		String("type", "", "Subtitle type for load (srt, ass); inferred from the file name when empty")
	sendCmd.Flags().
		StringArray("set", nil, "Setting to change as key=value (repeatable)")
}

var actionAliases = map[string]string{
	"load":     player.ActionLoadSubtitle,
	"clear":    player.ActionClearSubtitle,
	"settings": player.ActionUpdateSettings,
	"status":   player.ActionGetSubtitleStatus,
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext()
	defer stop()

	typ, _ := cmd.Flags().GetString("type")
	sets, _ := cmd.Flags().GetStringArray("set")

	var file string
	if len(args) == 2 {
		file = args[1]
	}

	req, err := buildRequest(args[0], file, typ, sets)
	if err != nil {
		return err
	}

	client := transport.NewClient(cfg.HTTPAddr, nil)
	resp, err := client.Send(ctx, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))

	if !resp.Success {
		return fmt.Errorf("player rejected %s: %s", req.Action, resp.Error)
	}
	return nil
}

// buildRequest turns command arguments into a protocol request. Unknown
// actions are passed through so the player can answer them.
func buildRequest(action, file, typ string, sets []string) (player.Request, error) {
	if full, ok := actionAliases[action]; ok {
		action = full
	}
	req := player.Request{Action: action}

	switch action {
	case player.ActionLoadSubtitle:
		if file == "" {
			return req, fmt.Errorf("%s needs a subtitle file", action)
		}
		content, err := subtitle.ReadFile(file)
		if err != nil {
			return req, err
		}
		name := filepath.Base(file)
		if content, err = repairIfASS(content, name, typ); err != nil {
			return req, err
		}
		req.Content = content
		req.FileName = name
		req.Type = typ
	case player.ActionUpdateSettings:
		if len(sets) == 0 {
			return req, fmt.Errorf("%s needs at least one --set key=value", action)
		}
		raw, err := settingsJSON(sets)
		if err != nil {
			return req, err
		}
		req.Settings = raw
	}
	return req, nil
}

// repairIfASS repairs ASS content before it is sent. Files whose type
// cannot be told are sent as they are for the player to judge.
func repairIfASS(content, name, typ string) (string, error) {
	var (
		format subtitle.Format
		err    error
	)
	if typ != "" {
		format, err = subtitle.ParseFormat(typ)
	} else {
		format, err = subtitle.FormatFromFileName(name)
	}
	if err != nil || format != subtitle.FormatASS {
		return content, nil
	}
	return subtitle.RepairASS(content, name)
}

// settingsJSON encodes key=value pairs; numeric values become JSON numbers.
func settingsJSON(sets []string) (json.RawMessage, error) {
	values := make(map[string]any, len(sets))
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q: expected key=value", set)
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			values[key] = n
		} else {
			values[key] = value
		}
	}
	return json.Marshal(values)
}
