package humastar

import (
	"fmt"
	"strings"
)

// Action is a state-dependent hypermedia action link. Response bodies that
// implement Actor get one Link header per action, e.g.
//
//	</api/v1/selection>; rel="select"; method="PUT"; title="Select facility"
type Action struct {
	Rel    string // IANA rel or custom (e.g., "select", "route")
	Href   string // target URL
	Method string // HTTP method; empty for plain navigation
	Title  string // optional human-readable label
}

// Actor is implemented by response bodies that provide state-dependent actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as an RFC 8288 Link header value.
func (a Action) LinkHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		fmt.Fprintf(&b, `; method="%s"`, a.Method)
	}
	if a.Title != "" {
		fmt.Fprintf(&b, `; title="%s"`, a.Title)
	}
	return b.String()
}

// ActionDef is a reusable action template. Pattern uses a single %s verb
// for the resource ID.
type ActionDef struct {
	Rel     string
	Pattern string
	Method  string
	Title   string
}

// ActionsFor generates concrete actions from defs for a resource ID.
func ActionsFor(id string, defs []ActionDef) []Action {
	actions := make([]Action, len(defs))
	for i, d := range defs {
		href := d.Pattern
		if strings.Contains(href, "%s") {
			href = fmt.Sprintf(d.Pattern, id)
		}
		actions[i] = Action{Rel: d.Rel, Href: href, Method: d.Method, Title: d.Title}
	}
	return actions
}
