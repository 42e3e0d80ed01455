package quiz

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/biolaureat/learn-client/internal/utils"
)

// Verdict classifies one answered question.
type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictWrong   Verdict = "wrong"
)

// ReportItem is one question's outcome. SelectedIndex is nil when the
// question was never answered; that should not happen for a normally
// completed run but is handled rather than rejected.
type ReportItem struct {
	Index         int      `json:"index"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"correct_index"`
	SelectedIndex *int     `json:"selected_index"`
	Explanation   string   `json:"explanation,omitempty"`
	Verdict       Verdict  `json:"result"`
}

// Report is the read-only summary of a completed attempt.
type Report struct {
	CorrectCount int          `json:"correct"`
	Total        int          `json:"total"`
	Items        []ReportItem `json:"items"`
}

// Report derives the summary from the attempt's questions and selections.
// Pure: it never mutates the run and may be called on an unfinished attempt.
func (r *Run) Report() Report {
	report := Report{
		Total: len(r.questions),
		Items: make([]ReportItem, 0, len(r.questions)),
	}

	for i, question := range r.questions {
		item := ReportItem{
			Index:        i + 1,
			Question:     question.Question,
			Options:      question.Options,
			CorrectIndex: question.CorrectIndex,
			Explanation:  question.Explanation,
			Verdict:      VerdictWrong,
		}
		if selected, ok := r.selections[i]; ok {
			item.SelectedIndex = utils.Ptr(selected)
			if selected == question.CorrectIndex {
				item.Verdict = VerdictCorrect
				report.CorrectCount++
			}
		}
		report.Items = append(report.Items, item)
	}
	return report
}

// WriteText renders the report as the plain-text export offered after a
// quiz, one block per question.
func (r Report) WriteText(w io.Writer, title string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — Corecte: %d/%d\n\n", title, r.CorrectCount, r.Total)

	for _, item := range r.Items {
		selText := "—"
		if item.SelectedIndex != nil && *item.SelectedIndex < len(item.Options) {
			selText = item.Options[*item.SelectedIndex]
		}
		mark := "❌"
		if item.Verdict == VerdictCorrect {
			mark = "✅"
		}

		fmt.Fprintf(&b, "Q%d. %s\n", item.Index, item.Question)
		fmt.Fprintf(&b, "  Răspunsul tău: %s %s\n", selText, mark)
		fmt.Fprintf(&b, "  Răspuns corect: %s\n", item.Options[item.CorrectIndex])
		if explanation := strings.TrimSpace(item.Explanation); explanation != "" {
			fmt.Fprintf(&b, "  Explicație: %s\n", explanation)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "[Report.WriteText] write report")
}
