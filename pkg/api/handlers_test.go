package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/config"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/diskspace"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/radarr"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/watcher3"
)

// upstreamMovie is the liststatus shape the fake Watcher3 serves.
type upstreamMovie struct {
	TmdbID       string `json:"tmdbid"`
	ImdbID       string `json:"imdbid"`
	Title        string `json:"title"`
	SortTitle    string `json:"sort_title"`
	Year         string `json:"year"`
	Score        string `json:"score"`
	AddedDate    string `json:"added_date"`
	FinishedFile string `json:"finished_file"`
}

// fakeWatcher is a minimal stateful Watcher3 stand-in.
type fakeWatcher struct {
	mu            sync.Mutex
	movies        map[string]upstreamMovie // keyed by tmdbid
	moverPath     string
	searchResults []map[string]interface{}
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		movies:    map[string]upstreamMovie{},
		moverPath: "/does/not/exist/movies/{title} ({year})",
	}
}

func (f *fakeWatcher) add(movie upstreamMovie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies[movie.TmdbID] = movie
}

func (f *fakeWatcher) lookup(r *http.Request) (upstreamMovie, bool) {
	if tmdbID := r.URL.Query().Get("tmdbid"); tmdbID != "" {
		movie, tracked := f.movies[tmdbID]
		return movie, tracked
	}
	if imdbID := r.URL.Query().Get("imdbid"); imdbID != "" {
		for _, movie := range f.movies {
			if movie.ImdbID == imdbID {
				return movie, true
			}
		}
	}
	return upstreamMovie{}, false
}

func (f *fakeWatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	respond := func(body interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}

	switch r.URL.Query().Get("mode") {
	case "getconfig":
		respond(map[string]interface{}{
			"response": true,
			"config": map[string]interface{}{
				"Postprocessing": map[string]interface{}{"moverpath": f.moverPath},
				"Quality": map[string]interface{}{
					"Profiles": map[string]interface{}{
						"Default": map[string]interface{}{
							"Sources": map[string]interface{}{
								"BluRay-1080p": []interface{}{true, 1},
								"WebDL-720p":   []interface{}{false, 2},
							},
						},
					},
				},
			},
		})
	case "liststatus":
		if r.URL.Query().Get("tmdbid") == "" && r.URL.Query().Get("imdbid") == "" {
			movies := make([]upstreamMovie, 0, len(f.movies))
			for _, movie := range f.movies {
				movies = append(movies, movie)
			}
			respond(map[string]interface{}{"response": true, "movies": movies})
			return
		}
		if movie, tracked := f.lookup(r); tracked {
			respond(map[string]interface{}{"response": true, "movies": []upstreamMovie{movie}})
			return
		}
		respond(map[string]interface{}{"response": true, "movies": []upstreamMovie{}})
	case "movie_metadata":
		respond(map[string]interface{}{"response": true})
	case "addmovie":
		movie, tracked := f.lookup(r)
		if tracked {
			respond(map[string]interface{}{
				"response": false,
				"error":    fmt.Sprintf("%s already exists", movie.Title),
			})
			return
		}
		tmdbID := r.URL.Query().Get("tmdbid")
		if tmdbID == "" {
			tmdbID = "900000" // fake id for imdb-keyed additions
		}
		f.movies[tmdbID] = upstreamMovie{
			TmdbID:    tmdbID,
			ImdbID:    r.URL.Query().Get("imdbid"),
			Title:     "Added Movie",
			SortTitle: "added movie",
			Year:      "2020",
			Score:     "7.0",
			AddedDate: "2024-01-01",
		}
		respond(map[string]interface{}{"response": true})
	case "removemovie":
		if movie, tracked := f.lookup(r); tracked {
			delete(f.movies, movie.TmdbID)
			respond(map[string]interface{}{"response": true})
			return
		}
		respond(map[string]interface{}{"response": false, "error": "movie not tracked"})
	case "search_results":
		respond(map[string]interface{}{
			"response": len(f.searchResults) > 0,
			"results":  f.searchResults,
		})
	case "version":
		respond(map[string]interface{}{"response": true, "version": "3.0.0"})
	default:
		respond(map[string]interface{}{"response": false, "error": "unknown mode"})
	}
}

// newTestRouter wires a router against the fake upstream.
func newTestRouter(t *testing.T, fake *fakeWatcher) http.Handler {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	return routerFor(t, server.URL)
}

// routerFor builds the full handler chain against an upstream URL, which
// does not need to be reachable.
func routerFor(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()

	parsed, err := url.Parse(upstreamURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		ListenIP:          "127.0.0.1",
		ListenPort:        0,
		Watcher3Scheme:    "http",
		Watcher3Host:      parsed.Hostname(),
		Watcher3Port:      port,
		Watcher3APIKey:    "testkey",
		Watcher3SSLVerify: true,
	}

	client, err := watcher3.New(cfg)
	require.NoError(t, err)

	return NewRouter(New(cfg, client))
}

func doRequest(router http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func matrix() upstreamMovie {
	return upstreamMovie{
		TmdbID:       "603",
		ImdbID:       "tt0133093",
		Title:        "The Matrix",
		SortTitle:    "matrix, the",
		Year:         "1999",
		Score:        "8.7",
		AddedDate:    "2023-04-01",
		FinishedFile: "/movies/The Matrix (1999)/movie.mkv",
	}
}

func TestSystemStatus(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodGet, "/api/v3/system/status", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var status radarr.SystemStatus
	decodeBody(t, recorder, &status)
	assert.Equal(t, "Radarr", status.AppName)
	assert.NotEmpty(t, status.Version)
}

func TestSystemStatusWithUnreachableUpstream(t *testing.T) {
	// nothing listens on port 1
	router := routerFor(t, "http://127.0.0.1:1")

	recorder := doRequest(router, http.MethodGet, "/api/v3/system/status", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestUnreachableUpstreamReturns502(t *testing.T) {
	router := routerFor(t, "http://127.0.0.1:1")

	for _, path := range []string{
		"/api/v3/movie",
		"/api/v3/movie/tt0133093",
		"/api/v3/qualityProfile",
		"/api/v3/rootfolder",
	} {
		recorder := doRequest(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadGateway, recorder.Code, "path %s", path)

		var body map[string]string
		decodeBody(t, recorder, &body)
		assert.NotEmpty(t, body["error"], "path %s", path)
	}
}

func TestRootFolderSentinelForMissingPath(t *testing.T) {
	fake := newFakeWatcher()
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodGet, "/api/v3/rootfolder", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var folders []radarr.RootFolder
	decodeBody(t, recorder, &folders)
	require.Len(t, folders, 1)

	assert.Equal(t, "/does/not/exist/movies", folders[0].Path)
	assert.Equal(t, diskspace.FallbackFreeSpace, folders[0].FreeSpace)
	assert.Equal(t, diskspace.FallbackTotalSpace, folders[0].TotalSpace)
	assert.True(t, folders[0].Accessible)
	assert.Equal(t, 1, folders[0].ID)
}

func TestRootFolderRealPath(t *testing.T) {
	fake := newFakeWatcher()
	fake.moverPath = t.TempDir() + "/{title} ({year})"
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodGet, "/api/v3/rootfolder", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var folders []radarr.RootFolder
	decodeBody(t, recorder, &folders)
	require.Len(t, folders, 1)

	assert.Greater(t, folders[0].TotalSpace, int64(0))
	assert.NotEqual(t, diskspace.FallbackTotalSpace, folders[0].TotalSpace)
}

func TestQualityProfiles(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodGet, "/api/v3/qualityProfile", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var profiles []radarr.QualityProfile
	decodeBody(t, recorder, &profiles)
	require.Len(t, profiles, 1)

	assert.Equal(t, "Default", profiles[0].Name)
	assert.Equal(t, 1, profiles[0].ID)
	require.Len(t, profiles[0].Items, 2)
	assert.Equal(t, "BluRay-1080p", profiles[0].Items[0].Quality.Name)
	assert.Equal(t, 1080, profiles[0].Items[0].Quality.Resolution)
	assert.True(t, profiles[0].Items[0].Allowed)
	assert.False(t, profiles[0].Items[1].Allowed)
}

func TestListMovies(t *testing.T) {
	fake := newFakeWatcher()
	fake.add(matrix())
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodGet, "/api/v3/movie", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var movies []radarr.Movie
	decodeBody(t, recorder, &movies)
	require.Len(t, movies, 1)

	assert.Equal(t, 603, movies[0].TmdbID)
	assert.Equal(t, "The Matrix", movies[0].Title)
	assert.True(t, movies[0].Monitored)
	// the finished file is not visible locally
	assert.Equal(t, int64(0), movies[0].SizeOnDisk)
}

func TestListMoviesEmptyLibrary(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodGet, "/api/v3/movie", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", strings.TrimSpace(recorder.Body.String()))
}

func TestGetMovieByImdbID(t *testing.T) {
	fake := newFakeWatcher()
	fake.add(matrix())
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodGet, "/api/v3/movie/tt0133093", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var movie radarr.Movie
	decodeBody(t, recorder, &movie)
	assert.Equal(t, "tt0133093", movie.ImdbID)
	assert.Equal(t, 603, movie.TmdbID)
}

func TestGetMovieByTmdbID(t *testing.T) {
	fake := newFakeWatcher()
	fake.add(matrix())
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodGet, "/api/v3/movie/603", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var movie radarr.Movie
	decodeBody(t, recorder, &movie)
	assert.Equal(t, 603, movie.TmdbID)
}

func TestGetMovieUntrackedWithSearchResults(t *testing.T) {
	fake := newFakeWatcher()
	fake.searchResults = []map[string]interface{}{{"title": "The.Matrix.1999.1080p.BluRay"}}
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodGet, "/api/v3/movie/tt0133093", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var movie radarr.Movie
	decodeBody(t, recorder, &movie)
	assert.Equal(t, "tt0133093", movie.ImdbID)
	assert.Equal(t, "unknown", movie.Status)
	assert.False(t, movie.Monitored)
}

func TestGetMovieUnknown(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodGet, "/api/v3/movie/tt9999999", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	var body map[string]string
	decodeBody(t, recorder, &body)
	assert.Equal(t, "NotFound", body["message"])
}

func TestAddThenGetRoundTrip(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodPost, "/api/v3/movie",
		`{"tmdbId": 603, "addOptions": {"searchForMovie": true}}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created radarr.Movie
	decodeBody(t, recorder, &created)
	assert.Equal(t, 603, created.TmdbID)
	assert.NotNil(t, created.AddOptions)

	recorder = doRequest(router, http.MethodGet, "/api/v3/movie/603", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var fetched radarr.Movie
	decodeBody(t, recorder, &fetched)
	assert.Equal(t, 603, fetched.TmdbID)
}

func TestAddMovieMissingID(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodPost, "/api/v3/movie", `{}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var failures []radarr.ValidationFailure
	decodeBody(t, recorder, &failures)
	require.Len(t, failures, 1)
	assert.Equal(t, radarr.NotEmptyValidator, failures[0].ResourceName)
}

func TestAddMovieMalformedBody(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodPost, "/api/v3/movie", `{not json`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAddMovieAlreadyExists(t *testing.T) {
	fake := newFakeWatcher()
	fake.add(matrix())
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodPost, "/api/v3/movie", `{"tmdbId": 603}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var failures []radarr.ValidationFailure
	decodeBody(t, recorder, &failures)
	require.Len(t, failures, 1)
	assert.Equal(t, radarr.MovieExistsValidator, failures[0].ResourceName)
	assert.Equal(t, 603, failures[0].AttemptedValue)
}

func TestDeleteThenList(t *testing.T) {
	fake := newFakeWatcher()
	fake.add(matrix())
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodDelete, "/api/v3/movie/603", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(router, http.MethodGet, "/api/v3/movie", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var movies []radarr.Movie
	decodeBody(t, recorder, &movies)
	assert.Empty(t, movies)
}

func TestDeleteUnknownMovie(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodDelete, "/api/v3/movie/999", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestPutMovieAcceptedAndIgnored(t *testing.T) {
	fake := newFakeWatcher()
	fake.add(matrix())
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodPut, "/api/v3/movie/603", `{"monitored": false}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// nothing changed upstream
	_, tracked := fake.movies["603"]
	assert.True(t, tracked)
}

func TestCommandMoviesSearch(t *testing.T) {
	fake := newFakeWatcher()
	fake.add(matrix())
	fake.searchResults = []map[string]interface{}{{"title": "The.Matrix.1999.1080p.BluRay"}}
	router := newTestRouter(t, fake)

	recorder := doRequest(router, http.MethodPost, "/api/v3/command",
		`{"name": "MoviesSearch", "movieIds": [603]}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var command radarr.CommandResponse
	decodeBody(t, recorder, &command)
	assert.Equal(t, "MoviesSearch", command.Name)
	assert.Equal(t, "completed", command.Status)
}

func TestCommandUnknownName(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodPost, "/api/v3/command",
		`{"name": "RefreshMovie", "movieIds": [603]}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, newFakeWatcher())

	recorder := doRequest(router, http.MethodGet, "/api/v3/doesnotexist", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	var body map[string]string
	decodeBody(t, recorder, &body)
	assert.Equal(t, "NotFound", body["message"])
}
