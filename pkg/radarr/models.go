// Package radarr holds the Radarr v3 response shapes the adapter emits and
// the translation from Watcher3's movie model into them.
package radarr

// SystemStatus is the capability descriptor returned by /api/v3/system/status.
type SystemStatus struct {
	AppName           string `json:"appName"`
	InstanceName      string `json:"instanceName"`
	Version           string `json:"version"`
	BuildTime         string `json:"buildTime"`
	IsDebug           bool   `json:"isDebug"`
	IsProduction      bool   `json:"isProduction"`
	IsAdmin           bool   `json:"isAdmin"`
	IsUserInteractive bool   `json:"isUserInteractive"`
	StartupPath       string `json:"startupPath"`
	AppData           string `json:"appData"`
	OsName            string `json:"osName"`
	IsLinux           bool   `json:"isLinux"`
	IsOsx             bool   `json:"isOsx"`
	IsWindows         bool   `json:"isWindows"`
	Mode              string `json:"mode"`
	Branch            string `json:"branch"`
	Authentication    string `json:"authentication"`
	UrlBase           string `json:"urlBase"`
	RuntimeVersion    string `json:"runtimeVersion"`
	RuntimeName       string `json:"runtimeName"`
}

// Ratings is Radarr's vote summary.
type Ratings struct {
	Votes int     `json:"votes"`
	Value float64 `json:"value"`
}

// Language identifies a spoken language.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AlternateTitle is one alternative name for a movie.
type AlternateTitle struct {
	SourceType string   `json:"sourceType"`
	MovieID    int      `json:"movieId"`
	Title      string   `json:"title"`
	SourceID   int      `json:"sourceId"`
	Votes      int      `json:"votes"`
	VoteCount  int      `json:"voteCount"`
	Language   Language `json:"language"`
	ID         int      `json:"id"`
}

// Image is a poster or fanart reference.
type Image struct {
	CoverType string `json:"coverType"`
	RemoteURL string `json:"remoteURL"`
}

// Movie is Radarr's movie resource shape. Every field is always emitted:
// Ombi expects a fixed schema, so absent upstream data degrades to zero
// values rather than omitted keys.
type Movie struct {
	ID                  int              `json:"id"`
	Title               string           `json:"title"`
	OriginalTitle       string           `json:"originalTitle"`
	SortTitle           string           `json:"sortTitle"`
	Status              string           `json:"status"`
	Overview            string           `json:"overview"`
	Year                int              `json:"year"`
	HasFile             bool             `json:"hasFile"`
	Monitored           bool             `json:"monitored"`
	MinimumAvailability string           `json:"minimumAvailability"`
	IsAvailable         bool             `json:"isAvailable"`
	QualityProfileID    int              `json:"qualityProfileId"`
	SizeOnDisk          int64            `json:"sizeOnDisk"`
	Path                string           `json:"path"`
	FolderName          string           `json:"folderName"`
	Runtime             int              `json:"runtime"`
	CleanTitle          string           `json:"cleanTitle"`
	ImdbID              string           `json:"imdbId"`
	TmdbID              int              `json:"tmdbId"`
	TitleSlug           string           `json:"titleSlug"`
	Certification       string           `json:"certification"`
	Website             string           `json:"website"`
	YouTubeTrailerID    string           `json:"youTubeTrailerId"`
	Studio              string           `json:"studio"`
	InCinemas           string           `json:"inCinemas"`
	PhysicalRelease     string           `json:"physicalRelease"`
	DigitalRelease      string           `json:"digitalRelease"`
	Genres              []string         `json:"genres"`
	Images              []Image          `json:"images"`
	AlternateTitles     []AlternateTitle `json:"alternateTitles"`
	Added               string           `json:"added"`
	Ratings             Ratings          `json:"ratings"`

	// AddOptions is echoed back verbatim on movie creation.
	AddOptions interface{} `json:"addOptions,omitempty"`
}

// QualityDefinition describes a single quality.
type QualityDefinition struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	Resolution int    `json:"resolution"`
	Modifier   string `json:"modifier"`
}

// QualityItem is one entry in a quality profile.
type QualityItem struct {
	Quality QualityDefinition `json:"quality"`
	Items   []QualityItem     `json:"items"`
	Allowed bool              `json:"allowed"`
}

// QualityProfile is Radarr's quality profile shape.
type QualityProfile struct {
	Name              string        `json:"name"`
	Items             []QualityItem `json:"items"`
	MinFormatScore    int           `json:"minFormatScore"`
	CutoffFormatScore int           `json:"cutoffFormatScore"`
	ID                int           `json:"id"`
}

// RootFolder is Radarr's root folder shape, capacity included.
type RootFolder struct {
	Path       string `json:"path"`
	Accessible bool   `json:"accessible"`
	FreeSpace  int64  `json:"freeSpace"`
	TotalSpace int64  `json:"totalSpace"`
	ID         int    `json:"id"`
}

// CommandResponse acknowledges a POSTed command.
type CommandResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Queued string `json:"queued"`
}

// ValidationFailure mirrors Radarr's FluentValidation error element.
type ValidationFailure struct {
	PropertyName                     string        `json:"propertyName"`
	ErrorMessage                     string        `json:"errorMessage"`
	AttemptedValue                   int           `json:"attemptedValue"`
	Severity                         string        `json:"severity"`
	ErrorCode                        string        `json:"errorCode"`
	FormattedMessageArguments        []interface{} `json:"formattedMessageArguments"`
	FormattedMessagePlaceholderValues struct {
		PropertyName  string `json:"propertyName"`
		PropertyValue int    `json:"propertyValue"`
	} `json:"formattedMessagePlaceholderValues"`
	ResourceName string `json:"resourceName"`
}

// Validation resource names recognised by consumers of the add-movie error
// shape.
const (
	NotEmptyValidator    = "NotEmptyValidator"
	MovieExistsValidator = "MovieExistsValidator"
)

var validationMessages = map[string]string{
	NotEmptyValidator:    "'Tmdb Id' must not be empty.",
	MovieExistsValidator: "This movie has already been added",
}

// NewValidationFailure builds the single-element error array Radarr returns
// for rejected movie additions.
func NewValidationFailure(tmdbID int, resourceName string) []ValidationFailure {
	failure := ValidationFailure{
		PropertyName:              "TmdbId",
		ErrorMessage:              validationMessages[resourceName],
		AttemptedValue:            tmdbID,
		Severity:                  "error",
		ErrorCode:                 NotEmptyValidator,
		FormattedMessageArguments: []interface{}{},
		ResourceName:              resourceName,
	}
	failure.FormattedMessagePlaceholderValues.PropertyName = "Tmdb Id"
	failure.FormattedMessagePlaceholderValues.PropertyValue = tmdbID
	return []ValidationFailure{failure}
}
