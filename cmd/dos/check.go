/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dirpx.dev/dos"
	"dirpx.dev/dos/manifest"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	pathColor = color.New(color.Bold)
)

// errCheckFailed is returned when at least one manifest has problems.
var errCheckFailed = errors.New("check failed")

var checkCmd = &cobra.Command{
	Use:   "check <manifest>...",
	Short: "Define class manifests and report definition errors and open obligations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false
		for _, path := range args {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			if !checkManifest(cmd.OutOrStdout(), rt, path) {
				failed = true
			}
		}
		if failed {
			return errCheckFailed
		}
		return nil
	},
}

// checkManifest defines the manifest at path on rt and reports every
// class. Concrete classes must leave no interface obligation open.
func checkManifest(w io.Writer, rt *dos.Runtime, path string) bool {
	fmt.Fprintln(w, pathColor.Sprint(path))
	m, err := manifest.Load(path)
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", failColor.Sprint("error"), err)
		return false
	}
	classes, err := manifest.Define(rt, m)
	ok := err == nil
	for _, c := range classes {
		if c.IsAbstract() || c.IsInterface() || c.Flags().Has(dos.FlagStaticOnly) {
			fmt.Fprintf(w, "  %s %s %s\n", okColor.Sprint("ok"), c.Name(), warnColor.Sprint("("+c.Kind().String()+")"))
			continue
		}
		open, err := c.Obligations()
		switch {
		case err != nil:
			ok = false
			fmt.Fprintf(w, "  %s %s: %v\n", failColor.Sprint("fail"), c.Name(), err)
		case len(open) > 0:
			ok = false
			fmt.Fprintf(w, "  %s %s: open obligations %v\n", failColor.Sprint("fail"), c.Name(), open)
		default:
			fmt.Fprintf(w, "  %s %s\n", okColor.Sprint("ok"), c.Name())
		}
	}
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", failColor.Sprint("error"), err)
	}
	return ok
}
