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

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ezmodegames/crashmon/pkg/fingerprint"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
	"github.com/ezmodegames/crashmon/pkg/symbolicate"
)

func init() {
	rootCmd.AddCommand(symbolicateCmd)

	symbolicateCmd.Flags().StringSliceP("syms", "s", nil, "Symbol file search directories")
	symbolicateCmd.Flags().StringP("cache", "c", "", "Local symbol cache directory")
}

// symbolicateCmd represents the symbolicate command
var symbolicateCmd = &cobra.Command{
	Use:   "symbolicate <crashlog>",
	Short: "Resolve the frames of a crash trace against breakpad symbol files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}
		color.NoColor = !Color

		syms, _ := cmd.Flags().GetStringSlice("syms")
		cache, _ := cmd.Flags().GetString("cache")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read crashlog: %w", err)
		}

		frames := stackwalk.Parse(string(data))
		if len(frames) == 0 {
			return fmt.Errorf("no stack frames found in %s", args[0])
		}

		opts := []symbolicate.Option{symbolicate.WithSearchDirs(syms...)}
		if cache != "" {
			opts = append(opts, symbolicate.WithCacheDir(cache))
		}
		resolver, err := symbolicate.NewResolver(opts...)
		if err != nil {
			return err
		}
		frames = resolver.Symbolicate(frames)

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		for _, f := range frames {
			loc := fmt.Sprintf("%s+0x%X", f.Module, f.Offset)
			if f.System {
				loc = faint(loc)
			} else {
				loc = bold(loc)
			}
			if f.Symbol != "" {
				fmt.Printf("[%2d] %s (%s)\n", f.Index, loc, f.Symbol)
			} else {
				fmt.Printf("[%2d] %s\n", f.Index, loc)
			}
		}

		fmt.Printf("\ncrash hash: %s\n", bold(fingerprint.Compute(frames, string(data))))

		return nil
	},
}
