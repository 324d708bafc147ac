package radarr

import (
	"sort"
	"strconv"
	"strings"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/diskspace"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/watcher3"
)

const tmdbImageBase = "https://image.tmdb.org/t/p/original"

// statusNames maps TMDB status strings onto Radarr statuses. Anything
// Watcher3 reports outside this table collapses to "unknown".
var statusNames = map[string]string{
	"released":        "released",
	"rumored":         "announced",
	"planned":         "announced",
	"in production":   "inCinemas",
	"post production": "inCinemas",
	"canceled":        "deleted",
}

// TranslateStatus converts a Watcher3/TMDB movie status to Radarr's
// vocabulary.
func TranslateStatus(status string) string {
	if mapped, known := statusNames[strings.ToLower(status)]; known {
		return mapped
	}
	return "unknown"
}

// resolutionNames maps the resolution half of a Watcher3 source name to a
// vertical resolution.
var resolutionNames = map[string]int{
	"sd":    480,
	"720p":  720,
	"1080p": 1080,
	"4k":    2160,
}

// FromListStatus projects one Watcher3 liststatus entry into Radarr's movie
// shape. Fields Watcher3 cannot supply get their documented defaults so the
// emitted schema is always complete.
func FromListStatus(m watcher3.Movie) Movie {
	tmdbID, _ := strconv.Atoi(m.TmdbID)

	movie := Movie{
		ID:                  tmdbID,
		TmdbID:              tmdbID,
		ImdbID:              m.ImdbID,
		Title:               m.Title,
		OriginalTitle:       m.Title,
		SortTitle:           strings.ToLower(m.SortTitle),
		Status:              TranslateStatus(m.Status),
		Overview:            m.Plot,
		Monitored:           true,
		MinimumAvailability: "released",
		QualityProfileID:    1,
		CleanTitle:          strings.ToLower(strings.ReplaceAll(m.Title, " ", "")),
		TitleSlug:           m.TmdbID,
		Certification:       m.Rated,
		InCinemas:           datestamp(m.ReleaseDate),
		PhysicalRelease:     datestamp(m.MediaReleaseDate),
		Genres:              []string{},
		Images:              []Image{},
		AlternateTitles:     []AlternateTitle{},
		Added:               datestamp(m.AddedDate),
		Ratings:             Ratings{Votes: 0, Value: float64(m.Score)},
	}

	if year, err := strconv.Atoi(m.Year); err == nil {
		movie.Year = year
	}

	if m.FinishedFile != "" {
		movie.HasFile = true
		movie.IsAvailable = true
		movie.SizeOnDisk = diskspace.FileSize(m.FinishedFile)
		movie.Path = movieRoot(m.FinishedFile)
		movie.FolderName = movie.Path
	}

	if m.AlternativeTitles != "" {
		// ids start at 2, the main title counts as 1
		for i, title := range strings.Split(m.AlternativeTitles, ",") {
			movie.AlternateTitles = append(movie.AlternateTitles, alternateTitle(tmdbID, title, i+2))
		}
	}

	return movie
}

// ApplyMetadata folds Watcher3's extended movie_metadata output into an
// already-projected movie. Only fetched for single-movie lookups; pulling it
// per movie makes full library listings far too slow.
func ApplyMetadata(movie *Movie, md *watcher3.Metadata) {
	if md == nil {
		return
	}

	movie.Status = TranslateStatus(md.Status)
	movie.Website = md.Homepage
	movie.Runtime = md.Runtime
	movie.Ratings = Ratings{Votes: md.VoteCount, Value: md.VoteAverage}

	if len(md.ProductionCompanies) > 0 {
		movie.Studio = md.ProductionCompanies[0].Name
	}

	// Radarr reports user-country specific release and certification data.
	// Watcher3 carries every country, so take the first production country.
	if len(md.ProductionCountries) > 0 {
		applyReleaseDates(movie, md, md.ProductionCountries[0].ISO3166)
	}

	movie.Images = []Image{}
	if md.PosterPath != "" {
		movie.Images = append(movie.Images, Image{CoverType: "poster", RemoteURL: tmdbImageBase + md.PosterPath})
	}
	if md.BackdropPath != "" {
		movie.Images = append(movie.Images, Image{CoverType: "fanart", RemoteURL: tmdbImageBase + md.BackdropPath})
	}

	movie.Genres = []string{}
	for _, genre := range md.Genres {
		movie.Genres = append(movie.Genres, genre.Name)
	}

	movie.AlternateTitles = []AlternateTitle{}
	for i, title := range md.AlternativeTitles.Titles {
		movie.AlternateTitles = append(movie.AlternateTitles, alternateTitle(md.ID, title.Title, i+2))
	}
}

func applyReleaseDates(movie *Movie, md *watcher3.Metadata, country string) {
	for _, byCountry := range md.ReleaseDates.Results {
		if byCountry.ISO3166 != country {
			continue
		}
		for _, release := range byCountry.Releases {
			switch release.Type {
			case 3:
				movie.InCinemas = release.ReleaseDate
				movie.Certification = release.Certification
			case 4:
				movie.DigitalRelease = release.ReleaseDate
			case 5:
				movie.PhysicalRelease = release.ReleaseDate
			}
		}
		return
	}
}

func alternateTitle(tmdbID int, title string, id int) AlternateTitle {
	// Watcher3 does not carry per-title language data, assume English.
	return AlternateTitle{
		SourceType: "tmdb",
		MovieID:    tmdbID,
		Title:      title,
		SourceID:   tmdbID,
		Language:   Language{ID: 1, Name: "English"},
		ID:         id,
	}
}

// datestamp turns Watcher3's bare dates into the midnight-UTC timestamps
// Radarr emits.
func datestamp(date string) string {
	if date == "" {
		return ""
	}
	return date + "T00:00:00Z"
}

// movieRoot reduces a finished file path to its movie folder: the first two
// path segments under the root.
func movieRoot(finishedFile string) string {
	parts := strings.Split(finishedFile, "/")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "/")
}

// RootFolderFromMoverPath derives the library root from Watcher3's
// post-processing mover path template by dropping its final segment.
func RootFolderFromMoverPath(moverPath string) string {
	if idx := strings.LastIndex(moverPath, "/"); idx >= 0 {
		return moverPath[:idx]
	}
	return moverPath
}

// FromQualityProfiles translates Watcher3's quality profiles into Radarr's
// shape. Profiles are ordered by name and sources by descending priority so
// the synthesized ids are stable between requests.
func FromQualityProfiles(profiles map[string]watcher3.QualityProfile) []QualityProfile {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	translated := make([]QualityProfile, 0, len(names))
	for i, name := range names {
		translated = append(translated, QualityProfile{
			Name:  name,
			Items: qualityItems(profiles[name].Sources),
			ID:    i + 1,
		})
	}
	return translated
}

func qualityItems(sources map[string]watcher3.QualitySource) []QualityItem {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if sources[names[i]].Priority != sources[names[j]].Priority {
			return sources[names[i]].Priority < sources[names[j]].Priority
		}
		return names[i] < names[j]
	})

	items := make([]QualityItem, 0, len(names))
	for _, name := range names {
		source, resolution := splitSourceName(name)
		items = append(items, QualityItem{
			Quality: QualityDefinition{
				ID:         sources[name].Priority,
				Name:       name,
				Source:     source,
				Resolution: resolution,
				Modifier:   "none",
			},
			Items:   []QualityItem{},
			Allowed: sources[name].Allowed,
		})
	}
	return items
}

// splitSourceName parses Watcher3 source names like "BluRay-1080p" into a
// lowercase source and a vertical resolution.
func splitSourceName(name string) (string, int) {
	lowered := strings.ToLower(name)
	source, resName, found := strings.Cut(lowered, "-")
	if !found {
		return lowered, 0
	}
	return source, resolutionNames[resName]
}
