package swapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// stubFilms is the canned dataset served by StubHandler.
var stubFilms = []Film{
	{Title: "A New Hope", EpisodeID: 4, Director: "George Lucas", ReleaseDate: "1977-05-25", OpeningCrawl: "It is a period of civil war."},
	{Title: "The Empire Strikes Back", EpisodeID: 5, Director: "Irvin Kershner", ReleaseDate: "1980-05-17", OpeningCrawl: "It is a dark time for the Rebellion."},
	{Title: "Return of the Jedi", EpisodeID: 6, Director: "Richard Marquand", ReleaseDate: "1983-05-25", OpeningCrawl: "Luke Skywalker has returned."},
}

// StubHandler serves a fixed film collection with the remote API's shape.
// It backs deterministic tests and the browserrun self-test, where hitting
// the public API would make the run flaky.
func StubHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /films/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Count   int    `json:"count"`
			Results []Film `json:"results"`
		}{Count: len(stubFilms), Results: stubFilms})
	})

	mux.HandleFunc("GET /films/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || idx < 1 || idx > len(stubFilms) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stubFilms[idx-1])
	})

	return mux
}
