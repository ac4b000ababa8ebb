// Package board derives what the scoreboard displays from raw payloads.
package board

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/scoreview/internal/domain/model"
)

// Cell is the rendering of one team/problem pair.
type Cell struct {
	Symbol      string `json:"symbol"`
	Label       string `json:"label"`
	FirstSolved bool   `json:"first_solved"`
	Solved      bool   `json:"solved"`
	Pending     bool   `json:"pending"`
}

// CellFor renders p. A failed attempt shows "-" even while later runs are
// pending or frozen; only untried problems show "?".
func CellFor(p model.Problem) Cell {
	c := Cell{FirstSolved: p.FirstSolved, Solved: p.Solved}
	switch {
	case p.Solved:
		c.Symbol = "+"
	case p.Attempted:
		c.Symbol = "-"
	case p.Pending || p.Frozen:
		c.Symbol = "?"
		c.Pending = true
	default:
		return Cell{}
	}
	if p.Submitted > 0 {
		c.Label = fmt.Sprintf("%d/%d", p.Submitted, p.Timestamp)
	}
	return c
}

// DirtPercent renders a dirt ratio as a rounded percentage.
func DirtPercent(ratio float64) string {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	return fmt.Sprintf("%d%%", int(math.Round(ratio*100)))
}

// ProblemLetter maps 0 to "A", 25 to "Z", 26 to "AA".
func ProblemLetter(i int) string {
	if i < 0 {
		return ""
	}
	var b []byte
	for i >= 0 {
		b = append([]byte{byte('A' + i%26)}, b...)
		i = i/26 - 1
	}
	return string(b)
}

// ProblemLabels returns the configured problem ids, or letters when none are set.
func ProblemLabels(cfg model.ContestConfig) []string {
	if len(cfg.ProblemID) > 0 {
		return cfg.ProblemID
	}
	out := make([]string, cfg.ProblemQuantity)
	for i := range out {
		out[i] = ProblemLetter(i)
	}
	return out
}

// FormatStatus turns "WRONG_ANSWER" into "Wrong Answer".
func FormatStatus(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
