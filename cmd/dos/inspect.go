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
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"dirpx.dev/dos"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
)

type panelStyles struct {
	header lipgloss.Style
	key    lipgloss.Style
	muted  lipgloss.Style
	open   lipgloss.Style
	border lipgloss.Style
}

func newPanelStyles(r *lipgloss.Renderer) panelStyles {
	return panelStyles{
		header: r.NewStyle().Foreground(accentColor).Bold(true),
		key:    r.NewStyle().Foreground(highlightColor).Width(12),
		muted:  r.NewStyle().Foreground(mutedColor),
		open:   r.NewStyle().Foreground(errorColor),
		border: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1),
	}
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <class>",
	Short: "Show the RTTI of a class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		c, err := rt.Import(args[0])
		if err != nil {
			return err
		}
		panel, err := renderClass(c, newPanelStyles(renderer))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), panel)
		return nil
	},
}

func names(classes []*dos.Class) string {
	parts := make([]string, len(classes))
	for i, c := range classes {
		parts[i] = c.Name()
	}
	return strings.Join(parts, ", ")
}

// renderClass lays out the RTTI of c in a bordered panel.
func renderClass(c *dos.Class, st panelStyles) (string, error) {
	var lines []string
	row := func(key, value string) {
		if value == "" {
			value = st.muted.Render("-")
		}
		lines = append(lines, st.key.Render(key)+value)
	}

	lines = append(lines, st.header.Render(c.Name()))
	row("kind", c.Kind().String())
	row("flags", c.Flags().String())
	if s := c.Super(); s != nil {
		row("extends", s.Name())
	} else {
		row("extends", "")
	}
	row("implements", names(c.Interfaces()))

	hierarchy := c.Hierarchy()
	parts := make([]string, len(hierarchy))
	for i, h := range hierarchy {
		parts[i] = h.SimpleName()
	}
	row("hierarchy", strings.Join(parts, " → "))
	row("subclasses", names(c.AllDescendants()))
	if c.IsInterface() {
		impls, err := c.AllImplementors()
		if err != nil {
			return "", err
		}
		row("implementors", names(impls))
	}

	if !c.Flags().Has(dos.FlagStaticOnly) {
		open, err := c.Obligations()
		if err != nil {
			return "", err
		}
		if len(open) > 0 {
			row("open", st.open.Render(strings.Join(open, ", ")))
		}
	}

	if s := c.Static(); s != nil {
		var statics []dos.MemberInfo
		for _, m := range s.Public().Members() {
			if m.Kind != dos.MemberBuiltin {
				statics = append(statics, m)
			}
		}
		if len(statics) > 0 {
			lines = append(lines, "", st.header.Render("static"))
		}
		for _, m := range statics {
			row(m.Name, m.Kind.String()+st.muted.Render(access(m)))
		}
	}
	return st.border.Render(strings.Join(lines, "\n")), nil
}

func access(m dos.MemberInfo) string {
	switch {
	case m.Readable && m.Writable:
		return " rw"
	case m.Readable:
		return " r"
	case m.Writable:
		return " w"
	}
	return ""
}
