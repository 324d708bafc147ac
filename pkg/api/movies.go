package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/logger"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/radarr"
)

// movieIDFromPath extracts the trailing movie id, "tt"-prefixed imdb or bare
// tmdb, from a /api/v3/movie request path. Empty when no id was given.
func movieIDFromPath(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, "/api/v3/movie")
	return strings.Trim(path, "/")
}

// HandleMovies dispatches the /api/v3/movie surface on method and id.
func (h *Handler) HandleMovies(w http.ResponseWriter, r *http.Request) {
	movieID := movieIDFromPath(r)

	switch r.Method {
	case http.MethodGet:
		if movieID == "" {
			h.listMovies(w, r)
			return
		}
		h.getMovie(w, r, movieID)
	case http.MethodPost:
		if movieID != "" {
			writeNotFound(w)
			return
		}
		h.addMovie(w, r)
	case http.MethodPut:
		// Radarr consumers PUT edits we have nowhere to apply. Accept and
		// ignore so they do not error out.
		logger.Info("Ignoring movie edit for id: %s", movieID)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		if movieID == "" {
			writeNotFound(w)
			return
		}
		h.deleteMovie(w, r, movieID)
	default:
		writeNotFound(w)
	}
}

// listMovies returns the whole tracked library. Metadata enrichment is
// skipped here, Watcher3 serves movie_metadata one movie at a time and large
// libraries would take ages.
func (h *Handler) listMovies(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Getting all movies.")

	upstreamMovies, err := h.watcher.ListStatus(r.Context(), "")
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	movies := make([]radarr.Movie, 0, len(upstreamMovies))
	for _, upstreamMovie := range upstreamMovies {
		movies = append(movies, radarr.FromListStatus(upstreamMovie))
	}

	writeJSON(w, http.StatusOK, movies)
}

// getMovie returns a single movie with full metadata, falling back to
// Watcher3's search results for ids that are not tracked yet.
func (h *Handler) getMovie(w http.ResponseWriter, r *http.Request, movieID string) {
	logger.Debug("Getting movie with id: %s", movieID)

	movie, err := h.fetchMovie(r.Context(), movieID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if movie == nil {
		h.untrackedMovie(w, r, movieID)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// fetchMovie looks a movie up in the tracked library and enriches it with
// extended metadata. nil with nil error means the id is not tracked.
func (h *Handler) fetchMovie(ctx context.Context, movieID string) (*radarr.Movie, error) {
	upstreamMovies, err := h.watcher.ListStatus(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if len(upstreamMovies) == 0 {
		return nil, nil
	}

	movie := radarr.FromListStatus(upstreamMovies[0])

	if movie.ImdbID != "" {
		metadata, err := h.watcher.MovieMetadata(ctx, movie.ImdbID)
		if err != nil {
			// The movie itself is known, a metadata miss should not fail
			// the lookup.
			logger.Warn("Could not fetch metadata for %s: %v", movie.ImdbID, err)
		} else {
			radarr.ApplyMetadata(&movie, metadata)
		}
	}

	return &movie, nil
}

// untrackedMovie reports on an id Watcher3 does not track. For imdb ids the
// search backlog is consulted so consumers can distinguish "known but not
// tracked" from "unknown".
func (h *Handler) untrackedMovie(w http.ResponseWriter, r *http.Request, movieID string) {
	if !strings.HasPrefix(movieID, "tt") {
		writeNotFound(w)
		return
	}

	raw, err := h.watcher.SearchResults(r.Context(), movieID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	var search struct {
		Response bool `json:"response"`
		Results  []struct {
			Title string `json:"title"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &search); err != nil || !search.Response || len(search.Results) == 0 {
		writeNotFound(w)
		return
	}

	movie := radarr.Movie{
		ImdbID:          movieID,
		Title:           search.Results[0].Title,
		Status:          "unknown",
		Genres:          []string{},
		Images:          []radarr.Image{},
		AlternateTitles: []radarr.AlternateTitle{},
	}
	writeJSON(w, http.StatusOK, movie)
}

// addMovieRequest is the subset of Radarr's add-movie body the adapter uses.
type addMovieRequest struct {
	TmdbID     json.Number `json:"tmdbId"`
	ImdbID     string      `json:"imdbId"`
	AddOptions interface{} `json:"addOptions"`
}

// addMovie asks Watcher3 to track a new movie and responds with the created
// resource.
func (h *Handler) addMovie(w http.ResponseWriter, r *http.Request) {
	var request addMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Error("Malformed add movie body: %v", err)
		writeJSON(w, http.StatusBadRequest, radarr.NewValidationFailure(0, radarr.NotEmptyValidator))
		return
	}

	movieID := request.TmdbID.String()
	if movieID == "" || movieID == "0" {
		movieID = request.ImdbID
	}
	if movieID == "" {
		logger.Error("No imdb or tmdb id provided for add movie.")
		writeJSON(w, http.StatusBadRequest, radarr.NewValidationFailure(0, radarr.NotEmptyValidator))
		return
	}

	logger.Info("Adding movie with id: %s", movieID)

	reply, err := h.watcher.AddMovie(r.Context(), movieID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if !reply.Response {
		if strings.Contains(reply.Error, "already exists") {
			tmdbID := 0
			if existing, err := h.fetchMovie(r.Context(), movieID); err == nil && existing != nil {
				tmdbID = existing.TmdbID
			}
			writeJSON(w, http.StatusBadRequest, radarr.NewValidationFailure(tmdbID, radarr.MovieExistsValidator))
			return
		}
		writeError(w, http.StatusBadRequest, "%s", reply.Error)
		return
	}

	movie, err := h.fetchMovie(r.Context(), movieID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if movie == nil {
		writeError(w, http.StatusBadGateway, "movie %s not tracked after add", movieID)
		return
	}

	movie.AddOptions = request.AddOptions
	writeJSON(w, http.StatusCreated, movie)
}

// deleteMovie removes a movie from Watcher3.
func (h *Handler) deleteMovie(w http.ResponseWriter, r *http.Request, movieID string) {
	logger.Info("Removing movie with id: %s", movieID)

	reply, err := h.watcher.RemoveMovie(r.Context(), movieID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if !reply.Response {
		logger.Warn("Could not remove movie %s: %s", movieID, reply.Error)
		writeNotFound(w)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

// commandRequest is the body of a POSTed Radarr command.
type commandRequest struct {
	Name     string        `json:"name"`
	MovieIDs []json.Number `json:"movieIds"`
}

// HandleCommand handles POSTed commands. Only MoviesSearch is supported.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeNotFound(w)
		return
	}

	var request commandRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Error("Malformed command body: %v", err)
		writeError(w, http.StatusBadRequest, "malformed command body")
		return
	}

	if request.Name != "MoviesSearch" || len(request.MovieIDs) == 0 {
		logger.Error("Unknown command: %s", request.Name)
		writeNotFound(w)
		return
	}

	movieID := request.MovieIDs[0].String()
	logger.Info("Searching movie: %s", movieID)

	imdbID := movieID
	if !strings.HasPrefix(imdbID, "tt") {
		movie, err := h.fetchMovie(r.Context(), movieID)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		if movie == nil || movie.ImdbID == "" {
			writeNotFound(w)
			return
		}
		imdbID = movie.ImdbID
	}

	if _, err := h.watcher.SearchResults(r.Context(), imdbID); err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, radarr.CommandResponse{
		ID:     1,
		Name:   request.Name,
		Status: "completed",
		Queued: time.Now().UTC().Format(time.RFC3339),
	})
}
