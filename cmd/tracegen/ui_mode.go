package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of --ui.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// wants reports whether a run over units descriptions shows the progress
// view. In auto mode that takes several units, no --quiet and a terminal.
func (m uiMode) wants(units int, quiet, tty bool) bool {
	if m == uiModeAuto {
		return tty && !quiet && units > 1
	}
	return m == uiModeOn
}

func shouldUseTUI(mode uiMode, units int, quiet bool) bool {
	return mode.wants(units, quiet, isTerminal(os.Stdout))
}
