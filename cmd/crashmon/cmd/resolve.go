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
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/ezmodegames/crashmon/pkg/symbolicate"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringSliceP("syms", "s", nil, "Symbol file search directories")
}

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <module> <offset>",
	Short: "Resolve a single module+offset to a symbol name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		syms, _ := cmd.Flags().GetStringSlice("syms")

		offset, err := cast.ToUint64E(args[1])
		if err != nil {
			return fmt.Errorf("invalid offset %q: %w", args[1], err)
		}

		resolver, err := symbolicate.NewResolver(symbolicate.WithSearchDirs(syms...))
		if err != nil {
			return err
		}

		name, err := resolver.Resolve(args[0], offset)
		if err != nil {
			if errors.Is(err, symbolicate.ErrNoSymbols) {
				fmt.Printf("%s+0x%X\n", args[0], offset)
				return nil
			}
			return err
		}

		fmt.Printf("%s+0x%X (%s)\n", args[0], offset, name)

		return nil
	},
}
