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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/ezmodegames/crashmon/internal/config"
	"github.com/ezmodegames/crashmon/pkg/client"
	"github.com/ezmodegames/crashmon/pkg/host"
	"github.com/ezmodegames/crashmon/pkg/loadorder"
	"github.com/ezmodegames/crashmon/pkg/symbolicate"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("game-version", "", "Game build version to report")
}

// staticAdapter backs the standalone watcher, where no script extender is
// present to describe the game.
type staticAdapter struct {
	version string
}

func (a *staticAdapter) GameVersion() string           { return a.version }
func (a *staticAdapter) ScriptExtenderVersion() string { return "" }
func (a *staticAdapter) LoadOrder() []host.PluginInfo  { return nil }

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Install the crash handler in-process and report until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		gameVersion, _ := cmd.Flags().GetString("game-version")

		resolver, err := symbolicate.NewResolver(
			symbolicate.WithSearchDirs(cfg.Symbols.SearchDirs...),
			symbolicate.WithCacheDir(cfg.Symbols.CacheDir),
		)
		if err != nil {
			return err
		}

		e := &host.Engine{
			GameID:        cfg.Game.ID,
			Resolver:      resolver,
			SubmitTimeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		}
		if cfg.API.URL != "" {
			e.Client = client.NewClient(cfg.API.URL, client.WithAPIKey(cfg.API.Key))
		}
		if cfg.Game.PluginsFile != "" {
			e.Collector = &loadorder.PluginList{Path: cfg.Game.PluginsFile}
		}

		if err := e.Init(&staticAdapter{version: gameVersion}); err != nil {
			return err
		}
		defer e.Shutdown()
		e.DataLoaded()

		fmt.Println("crash handler installed; press ctrl-c to exit")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		return nil
	},
}
