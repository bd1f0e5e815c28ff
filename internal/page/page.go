// Package page defines the closed set of renderable pages and the
// hydration contract between server-rendered HTML and the client bundle.
//
// Each response embeds a page identifier plus the data the server rendered
// with, as JSON, in a <script id="stackpad-hydration"> tag. The client
// parses that pair, resolves the same page, and attaches behavior without
// re-rendering.
package page

import (
	"fmt"
)

// Page identifies one renderable page. The set is closed: dispatch is an
// exhaustive switch, and an unknown identifier is an error, not a fallback.
type Page int

const (
	Home Page = iota
	Todo
	Films
	FilmDetail
)

// wire identifiers embedded in the hydration payload.
const (
	idHome       = "home"
	idTodo       = "todo"
	idFilms      = "films"
	idFilmDetail = "film-detail"
)

// String returns the wire identifier for the page.
func (p Page) String() string {
	switch p {
	case Home:
		return idHome
	case Todo:
		return idTodo
	case Films:
		return idFilms
	case FilmDetail:
		return idFilmDetail
	default:
		return fmt.Sprintf("page(%d)", int(p))
	}
}

// Title returns the human-readable page title.
func (p Page) Title() string {
	switch p {
	case Home:
		return "Welcome"
	case Todo:
		return "Todos"
	case Films:
		return "Star Wars Films"
	case FilmDetail:
		return "Film"
	default:
		return "stackpad"
	}
}

// ParsePage resolves a wire identifier back to its page.
func ParsePage(s string) (Page, error) {
	switch s {
	case idHome:
		return Home, nil
	case idTodo:
		return Todo, nil
	case idFilms:
		return Films, nil
	case idFilmDetail:
		return FilmDetail, nil
	default:
		return 0, fmt.Errorf("unknown page identifier: %q", s)
	}
}

// Hydration is the identifier/data pair embedded in rendered HTML.
// Data must round-trip losslessly through JSON.
type Hydration struct {
	Page string `json:"page"`
	Data any    `json:"data"`
}
