package watcher3

import (
	"encoding/json"
	"fmt"
)

// StatusReply is the generic success/failure envelope Watcher3 wraps most
// write operations in.
type StatusReply struct {
	Response bool   `json:"response"`
	Error    string `json:"error"`
}

// ServerConfig is the subset of Watcher3's getconfig payload the adapter
// consumes.
type ServerConfig struct {
	Postprocessing struct {
		MoverPath string `json:"moverpath"`
	} `json:"Postprocessing"`
	Quality struct {
		Profiles map[string]QualityProfile `json:"Profiles"`
	} `json:"Quality"`
}

type configEnvelope struct {
	Response bool          `json:"response"`
	Error    string        `json:"error"`
	Config   *ServerConfig `json:"config"`
}

// QualityProfile is a single Watcher3 quality profile.
type QualityProfile struct {
	Sources map[string]QualitySource `json:"Sources"`
}

// QualitySource is Watcher3's [allowed, priority] pair for one source.
type QualitySource struct {
	Allowed  bool
	Priority int
}

// UnmarshalJSON decodes the two-element array Watcher3 stores per source.
func (s *QualitySource) UnmarshalJSON(data []byte) error {
	var pair []json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		// Older Watcher3 builds emit [bool, int] rather than two numbers.
		var mixed []interface{}
		if err := json.Unmarshal(data, &mixed); err != nil {
			return err
		}
		if len(mixed) < 2 {
			return fmt.Errorf("quality source pair has %d elements", len(mixed))
		}
		allowed, ok := mixed[0].(bool)
		if !ok {
			return fmt.Errorf("quality source allowed flag is %T", mixed[0])
		}
		priority, ok := mixed[1].(float64)
		if !ok {
			return fmt.Errorf("quality source priority is %T", mixed[1])
		}
		s.Allowed = allowed
		s.Priority = int(priority)
		return nil
	}
	if len(pair) < 2 {
		return fmt.Errorf("quality source pair has %d elements", len(pair))
	}
	allowed, err := pair[0].Int64()
	if err != nil {
		return err
	}
	priority, err := pair[1].Int64()
	if err != nil {
		return err
	}
	s.Allowed = allowed != 0
	s.Priority = int(priority)
	return nil
}

// FlexFloat tolerates Watcher3 emitting numbers either bare or as strings.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*f = 0
			return nil
		}
		data = []byte(raw)
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*f = FlexFloat(value)
	return nil
}

// Movie is one entry from Watcher3's liststatus output. Watcher3 stores most
// columns as text, so numeric-looking fields arrive as strings.
type Movie struct {
	TmdbID            string    `json:"tmdbid"`
	ImdbID            string    `json:"imdbid"`
	Title             string    `json:"title"`
	SortTitle         string    `json:"sort_title"`
	Year              string    `json:"year"`
	Status            string    `json:"status"`
	Plot              string    `json:"plot"`
	Score             FlexFloat `json:"score"`
	AddedDate         string    `json:"added_date"`
	FinishedFile      string    `json:"finished_file"`
	ReleaseDate       string    `json:"release_date"`
	MediaReleaseDate  string    `json:"media_release_date"`
	Rated             string    `json:"rated"`
	AlternativeTitles string    `json:"alternative_titles"`
	Quality           string    `json:"quality"`
}

type listStatusEnvelope struct {
	Response bool    `json:"response"`
	Error    string  `json:"error"`
	Movies   []Movie `json:"movies"`
}

// Metadata is the tmdb_data portion of Watcher3's movie_metadata output.
type Metadata struct {
	ID                  int     `json:"id"`
	Status              string  `json:"status"`
	Homepage            string  `json:"homepage"`
	Runtime             int     `json:"runtime"`
	VoteCount           int     `json:"vote_count"`
	VoteAverage         float64 `json:"vote_average"`
	PosterPath          string  `json:"poster_path"`
	BackdropPath        string  `json:"backdrop_path"`
	ProductionCompanies []struct {
		Name string `json:"name"`
	} `json:"production_companies"`
	ProductionCountries []struct {
		ISO3166 string `json:"iso_3166_1"`
	} `json:"production_countries"`
	ReleaseDates struct {
		Results []CountryReleases `json:"results"`
	} `json:"release_dates"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	AlternativeTitles struct {
		Titles []struct {
			Title string `json:"title"`
		} `json:"titles"`
	} `json:"alternative_titles"`
}

// CountryReleases groups release dates by country.
type CountryReleases struct {
	ISO3166  string        `json:"iso_3166_1"`
	Releases []ReleaseDate `json:"release_dates"`
}

// ReleaseDate is a single TMDB release record. Type 3 is theatrical, 4
// digital, 5 physical.
type ReleaseDate struct {
	Type          int    `json:"type"`
	ReleaseDate   string `json:"release_date"`
	Certification string `json:"certification"`
}

type metadataEnvelope struct {
	Response bool      `json:"response"`
	Error    string    `json:"error"`
	TmdbData *Metadata `json:"tmdb_data"`
}
