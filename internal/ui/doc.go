// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [InputView] : type one or more artist names, separated by commas
//  2. [ResultsView] : browse the ranked recommendations
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Recommendations are computed in a [tea.Cmd] so the input stays responsive while the catalog loads.
//
// Keys: enter submits, esc goes back from the results (or quits from the input view), q quits from the results,
// and ctrl+c quits from anywhere. A no-match is rendered in the palette's error style.
package ui
