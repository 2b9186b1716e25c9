package projects

import "time"

// MoveTo changes the pipeline status and keeps the completion date in step:
// set exactly when the project enters Postado, cleared when it leaves it.
// The returned flag reports a fresh completion, the caller raises the
// "finalizado" notification on it.
func (p *Project) MoveTo(next Status, now time.Time) (completedNow bool) {
	prev := p.Status
	p.Status = next
	if next == StatusPosted && prev != StatusPosted {
		t := now
		p.CompletedAt = &t
		return true
	}
	if prev == StatusPosted && next != StatusPosted {
		p.CompletedAt = nil
	}
	return false
}
