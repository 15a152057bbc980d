package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"tracegen/internal/walk"
)

var typesCmd = &cobra.Command{
	Use:   "types [flags] <description.toml>",
	Short: "List the types reachable from a description",
	Long: `List every type the generated unit serializes, dependencies first, with
its wire tag, kind and C spelling.`,
	Args: cobra.ExactArgs(1),
	RunE: typesExecution,
}

func init() {
	typesCmd.Flags().String("kind", "", "only list types of this kind (e.g. enum, struct)")
	typesCmd.Flags().Bool("functions", false, "also list the function prototypes")
}

func typesExecution(cmd *cobra.Command, args []string) error {
	kind, err := cmd.Flags().GetString("kind")
	if err != nil {
		return err
	}
	functions, err := cmd.Flags().GetBool("functions")
	if err != nil {
		return err
	}
	color, err := useColor(cmd)
	if err != nil {
		return err
	}
	in, desc, err := loadDescription(cmd, args[0])
	if err != nil {
		return err
	}

	rows := [][]string{{"TAG", "KIND", "SPELLING"}}
	for _, id := range walk.AllTypes(in, desc.API) {
		k := in.KindOf(id)
		if kind != "" && !strings.EqualFold(kind, k.String()) {
			continue
		}
		rows = append(rows, []string{in.Tag(id), k.String(), in.Expr(id)})
	}
	out := cmd.OutOrStdout()
	writeTable(out, rows, color)

	if functions {
		fmt.Fprintln(out)
		for _, fn := range desc.API.Functions {
			fmt.Fprintf(out, "%s;\n", in.Prototype(fn, ""))
		}
		for _, iface := range desc.API.Interfaces {
			info, ok := in.InterfaceInfo(iface)
			if !ok {
				continue
			}
			for _, m := range info.Methods {
				fmt.Fprintf(out, "%s::%s;\n", info.Name, in.Prototype(m, ""))
			}
		}
	}
	return nil
}

// writeTable pads every column to its widest cell in display width. The
// first row is the header.
func writeTable(out io.Writer, rows [][]string, color bool) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	for r, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		line := b.String()
		if r == 0 && color {
			line = header.Render(line)
		}
		fmt.Fprintln(out, line)
	}
}
