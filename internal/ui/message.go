package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/soundalike/internal/recommend"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRecommended MsgKind = iota
)

type recommendedData struct {
	input  []string
	result *recommend.Result
	err    error
}

// recommendedMsg is the constructor for [MsgRecommended]
func recommendedMsg(input []string, result *recommend.Result, err error) Msg {
	return Msg{kind: MsgRecommended, data: recommendedData{input, result, err}}
}
