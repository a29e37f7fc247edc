/*
Copyright © 2024-2026 ezmodegames

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ezmodegames/crashmon/internal/config"
	"github.com/ezmodegames/crashmon/pkg/client"
	"github.com/ezmodegames/crashmon/pkg/loadorder"
	"github.com/ezmodegames/crashmon/pkg/report"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().String("url", "", "Collector intake URL")
	submitCmd.Flags().String("api-key", "", "Collector API key")
	submitCmd.Flags().String("game", "", "Game identifier")
	submitCmd.Flags().String("game-version", "", "Game build version")
	submitCmd.Flags().String("plugins", "", "Plugins file to attach as load order")
	submitCmd.Flags().String("notes", "", "Free-form notes to attach")
	viper.BindPFlag("api.url", submitCmd.Flags().Lookup("url"))
	viper.BindPFlag("api.key", submitCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("game.id", submitCmd.Flags().Lookup("game"))
}

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <crashlog>",
	Short: "Assemble a crash report from a trace file and submit it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.API.URL == "" {
			return fmt.Errorf("no collector URL configured (set api.url or --url)")
		}

		gameVersion, _ := cmd.Flags().GetString("game-version")
		plugins, _ := cmd.Flags().GetString("plugins")
		notes, _ := cmd.Flags().GetString("notes")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read crashlog: %w", err)
		}

		var mods loadorder.ModList
		if plugins == "" {
			plugins = cfg.Game.PluginsFile
		}
		if plugins != "" {
			pl := &loadorder.PluginList{Path: plugins}
			if mods, err = pl.Collect(); err != nil {
				return err
			}
		}

		b := &report.Builder{
			GameID:      cfg.Game.ID,
			GameVersion: gameVersion,
			Notes:       notes,
			Frames:      stackwalk.Parse(string(data)),
			RawTrace:    string(data),
			Mods:        mods,
		}
		r, err := b.Build()
		if err != nil {
			return err
		}

		token, err := report.NewShareToken()
		if err != nil {
			return err
		}
		fmt.Printf("share token: %s\n", token)

		c := client.NewClient(cfg.API.URL,
			client.WithAPIKey(cfg.API.Key),
			client.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		)

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.TimeoutSeconds)*time.Second)
		defer cancel()

		ack, err := c.Submit(ctx, r)
		if err != nil {
			return fmt.Errorf("%w (keep share token %s to find the report later)", err, token)
		}
		if ack.ShareToken != "" {
			token = ack.ShareToken
		}

		fmt.Printf("report %s accepted (share token %s)\n", ack.ID, token)

		return nil
	},
}
