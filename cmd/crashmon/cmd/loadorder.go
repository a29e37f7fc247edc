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
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/ezmodegames/crashmon/internal/utils"
	"github.com/ezmodegames/crashmon/pkg/loadorder"
)

func init() {
	rootCmd.AddCommand(loadorderCmd)

	loadorderCmd.Flags().BoolP("dir", "d", false, "Treat the argument as a mods directory instead of a plugins file")
	loadorderCmd.Flags().BoolP("archives", "a", false, "Treat the argument as an archive directory")
	loadorderCmd.Flags().Bool("hash", false, "Fingerprint mod payload files")
	loadorderCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

// loadorderCmd represents the loadorder command
var loadorderCmd = &cobra.Command{
	Use:   "loadorder <plugins-file|mods-dir>",
	Short: "Collect and display the active mod list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		asDir, _ := cmd.Flags().GetBool("dir")
		asArchives, _ := cmd.Flags().GetBool("archives")
		withHash, _ := cmd.Flags().GetBool("hash")
		asJSON, _ := cmd.Flags().GetBool("json")

		if asDir && asArchives {
			return fmt.Errorf("--dir and --archives are mutually exclusive")
		}

		var collector loadorder.Collector
		switch {
		case asArchives:
			collector = &loadorder.ArchiveScan{Dir: args[0], Fingerprint: withHash}
		case asDir || utils.IsDir(args[0]):
			collector = &loadorder.DirectoryScan{Root: args[0], Fingerprint: withHash}
		default:
			collector = &loadorder.PluginList{Path: args[0]}
		}

		list, err := collector.Collect()
		if err != nil {
			return err
		}

		if asJSON {
			out, err := list.ToJSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "IDX\tNAME\tENABLED\tHASH\tSIZE")
		for _, m := range list {
			idx := "-"
			if m.Index != nil {
				idx = fmt.Sprintf("%d", *m.Index)
			}
			size := ""
			if m.FileSize > 0 {
				size = fmt.Sprintf("%d", m.FileSize)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", idx, m.Name, m.Enabled, m.FileHash, size)
		}
		w.Flush()
		fmt.Printf("\n%d mods\n", len(list))

		return nil
	},
}
