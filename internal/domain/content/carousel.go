package content

import (
	"regexp"
	"strings"
)

// Carousel slides share a "Carrossel N" title prefix; slides without an
// ordinal fall into a single default group.
var carouselPrefix = regexp.MustCompile(`(?i)^carrossel\s*(\d+):?`)

const defaultGroupName = "Carrossel"

// Group is a derived, non-persisted view over the carousel pieces of a
// project. Slides keep their original sequence order.
type Group struct {
	Name   string
	Slides PieceList
}

// Approved is true only when every slide has been approved.
func (g Group) Approved() bool {
	for _, s := range g.Slides {
		if s.Status != StatusApproved {
			return false
		}
	}
	return len(g.Slides) > 0
}

// NeedsAdjust is true when any slide has an open adjustment request.
func (g Group) NeedsAdjust() bool {
	for _, s := range g.Slides {
		if s.Status == StatusAdjust {
			return true
		}
	}
	return false
}

// Feedback returns the group-level feedback, read from the first slide.
func (g Group) Feedback() string {
	if len(g.Slides) == 0 {
		return ""
	}
	return g.Slides[0].Feedback
}

// Cover returns the representative artwork and primary caption. The authoring
// side attaches final art and the main caption to the first slide only.
func (g Group) Cover() (artURL, caption string) {
	if len(g.Slides) == 0 {
		return "", ""
	}
	return g.Slides[0].FinalArtURL, g.Slides[0].Caption
}

// SlideIDs lists the member piece identifiers in sequence order.
func (g Group) SlideIDs() []string {
	ids := make([]string, len(g.Slides))
	for i, s := range g.Slides {
		ids[i] = s.ID
	}
	return ids
}

// GroupCarousels buckets pieces by title prefix, preserving both the order in
// which groups first appear and the slide order inside each group.
func GroupCarousels(pieces PieceList) []Group {
	var order []string
	byName := map[string]*Group{}
	for _, p := range pieces {
		name := defaultGroupName
		if m := carouselPrefix.FindStringSubmatch(p.Title); m != nil {
			name = defaultGroupName + " " + strings.TrimSpace(m[1])
		}
		g, ok := byName[name]
		if !ok {
			g = &Group{Name: name}
			byName[name] = g
			order = append(order, name)
		}
		g.Slides = append(g.Slides, p)
	}
	out := make([]Group, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}
