package page

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"stackpad/internal/store"
	"stackpad/internal/swapi"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("").Funcs(template.FuncMap{"filmID": filmID}).ParseFS(templateFS, "templates/*.tmpl"),
)

// view is the data handed to the layout template.
type view struct {
	Page      Page
	Title     string
	Hydration template.JS
	Data      any
}

// Render renders the page to a full HTML document with the hydration
// payload embedded. The data must match the page:
//
//	Home       -> nil
//	Todo       -> []store.Todo
//	Films      -> []swapi.Film
//	FilmDetail -> swapi.Film
func Render(p Page, data any) (string, error) {
	var body string
	switch p {
	case Home:
		body = "home.tmpl"
	case Todo:
		if _, ok := data.([]store.Todo); !ok {
			return "", fmt.Errorf("todo page wants []store.Todo, got %T", data)
		}
		body = "todo.tmpl"
	case Films:
		if _, ok := data.([]swapi.Film); !ok {
			return "", fmt.Errorf("films page wants []swapi.Film, got %T", data)
		}
		body = "films.tmpl"
	case FilmDetail:
		if _, ok := data.(swapi.Film); !ok {
			return "", fmt.Errorf("film detail page wants swapi.Film, got %T", data)
		}
		body = "film_detail.tmpl"
	default:
		return "", fmt.Errorf("unknown page: %d", int(p))
	}

	// json.Marshal escapes <, > and & so the payload is safe inside the
	// script tag.
	payload, err := json.Marshal(Hydration{Page: p.String(), Data: data})
	if err != nil {
		return "", fmt.Errorf("hydration data for %s is not JSON-serializable: %w", p, err)
	}

	v := view{
		Page:      p,
		Title:     p.Title(),
		Hydration: template.JS(payload),
		Data:      data,
	}

	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, body, v); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", p, err)
	}
	return sb.String(), nil
}

// filmID derives the numeric id used in /star-wars/{id} links. Films from
// the remote API carry their id in the URL field; stub data falls back to
// the 1-based list position.
func filmID(index int, f swapi.Film) string {
	if f.URL != "" {
		trimmed := strings.TrimRight(f.URL, "/")
		if i := strings.LastIndex(trimmed, "/"); i >= 0 && i+1 < len(trimmed) {
			return trimmed[i+1:]
		}
	}
	return fmt.Sprintf("%d", index+1)
}
