package compare

import (
	"fmt"
	"strconv"

	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/task"
)

// Stats aggregates verdicts across a batch.
type Stats struct {
	Total   int `json:"total,omitempty"`
	Passed  int `json:"passed,omitempty"`
	Failed  int `json:"failed,omitempty"`
	Skipped int `json:"skipped,omitempty"`
	Error   int `json:"error,omitempty"`
}

func (s Stats) Add(v Verdict) Stats {
	s.Total++
	switch v.Status {
	case task.StatusPASS:
		s.Passed++
	case task.StatusFAIL:
		s.Failed++
	case task.StatusSKIP:
		s.Skipped++
	case task.StatusERR:
		s.Error++
	}
	return s
}

func (s Stats) HasFailures() bool {
	return s.Failed > 0 || s.Error > 0
}

func (s Stats) Pretty() api.Text {
	t := api.Text{}
	if s.Passed > 0 {
		t = t.Append(strconv.Itoa(s.Passed)+" passed", "text-green-500")
	}
	if s.Failed > 0 {
		if !t.IsEmpty() {
			t = t.Append(" / ", "text-gray-500")
		}
		t = t.Append(strconv.Itoa(s.Failed)+" failed", "text-red-500")
	}
	if s.Error > 0 {
		if !t.IsEmpty() {
			t = t.Append(" / ", "text-gray-500")
		}
		t = t.Append(strconv.Itoa(s.Error)+" errors", "text-red-500")
	}
	if s.Skipped > 0 {
		t = t.Append(fmt.Sprintf(" (%d skipped)", s.Skipped), "text-yellow-500")
	}
	if t.IsEmpty() {
		t = t.Append("no fixtures", "text-yellow-500")
	}
	return t
}

func (s Stats) String() string {
	if s.Total == 0 {
		return "-"
	}
	str := fmt.Sprintf("%d/%d", s.Passed, s.Total-s.Skipped)
	if s.Skipped > 0 {
		str += fmt.Sprintf(" %d skipped", s.Skipped)
	}
	if s.Error > 0 {
		str += fmt.Sprintf(" %d error", s.Error)
	}
	return str
}
