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
	"github.com/spf13/cobra"

	"github.com/ezmodegames/crashmon/pkg/fingerprint"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().BoolP("signature", "s", false, "Also print the frame signature the hash is derived from")
}

// fingerprintCmd represents the fingerprint command
var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <crashlog>",
	Short: "Compute the grouping hash for a crash trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		showSig, _ := cmd.Flags().GetBool("signature")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read crashlog: %w", err)
		}

		frames := stackwalk.Parse(string(data))
		if showSig {
			if sig := fingerprint.Signature(frames); sig != "" {
				fmt.Printf("signature: %s\n", sig)
			} else {
				log.Warn("no non-system frames; hashing raw trace text")
			}
		}

		fmt.Println(fingerprint.Compute(frames, string(data)))

		return nil
	},
}
