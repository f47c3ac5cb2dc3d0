// Package musicbrainz looks up release metadata for a disc image by its
// MusicBrainz disc ID.
package musicbrainz

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uploadedlobster.com/mbtypes"
	"go.uploadedlobster.com/musicbrainzws2"
)

// Release contains metadata for an album/release
type Release struct {
	MBID        string  // MusicBrainz ID
	Title       string  // Album title
	Artist      string  // Artist name (may be "Various Artists" for compilations)
	Year        int     // Release year
	Genre       string  // Only set by manual metadata
	Country     string  // Release country code
	TrackCount  int     // Number of tracks
	DiscNum     int     // Disc of a multi-disc set, 0 = unknown
	DiscCount   int     // Number of discs
	Tracks      []Track // Track list
	Compilation bool    // True if Various Artists
}

// Track contains metadata for a single track
type Track struct {
	Num    int
	Title  string
	Artist string // May differ from album artist on compilations
}

// Track returns the track at position num.
func (r *Release) Track(num int) (Track, bool) {
	for _, t := range r.Tracks {
		if t.Num == num {
			return t, true
		}
	}
	return Track{}, false
}

// rateLimit is the MusicBrainz web service limit of one request per second.
const rateLimit = time.Second

// Client wraps the MusicBrainz API
type Client struct {
	client      *musicbrainzws2.Client
	userAgent   string
	coverArtURL string
	last        time.Time
}

// NewClient creates a new MusicBrainz API client
func NewClient(appName, version, contact string) *Client {
	client := musicbrainzws2.NewClient(musicbrainzws2.AppInfo{
		Name:    appName,
		Version: version,
		URL:     contact,
	})
	return &Client{
		client:      client,
		userAgent:   fmt.Sprintf("%s/%s ( %s )", appName, version, contact),
		coverArtURL: "https://coverartarchive.org",
	}
}

// Close releases client resources
func (c *Client) Close() error {
	return c.client.Close()
}

// wait blocks until the rate limit allows another request.
func (c *Client) wait(ctx context.Context) error {
	if d := rateLimit - time.Since(c.last); d > 0 && !c.last.IsZero() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.last = time.Now()
	return nil
}

// LookupByDiscID looks up releases by MusicBrainz disc ID.
// Returns a list of matching releases (may be multiple pressings/editions).
func (c *Client) LookupByDiscID(ctx context.Context, discID string) ([]Release, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	filter := musicbrainzws2.DiscIDFilter{
		Includes: []string{"recordings", "artists", "release-groups"},
	}

	disc, err := c.client.LookupDiscID(ctx, discID, filter)
	if err != nil {
		return nil, fmt.Errorf("disc lookup: %w", err)
	}

	releases := make([]Release, 0, len(disc.Releases))
	for _, r := range disc.Releases {
		releases = append(releases, Release{
			MBID:        string(r.ID),
			Title:       r.Title,
			Artist:      getArtistName(r.ArtistCredit),
			Year:        r.Date.Year,
			Country:     string(r.CountryCode),
			TrackCount:  getTotalTracks(r.Media),
			DiscCount:   len(r.Media),
			Compilation: isCompilation(r.ArtistCredit),
		})
	}

	return releases, nil
}

// GetReleaseTracks fetches full track information for a release.
// Call this after selecting a release from LookupByDiscID.
func (c *Client) GetReleaseTracks(ctx context.Context, mbid string) (*Release, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	filter := musicbrainzws2.IncludesFilter{
		Includes: []string{"recordings", "artists", "artist-credits"},
	}

	r, err := c.client.LookupRelease(ctx, mbtypes.MBID(mbid), filter)
	if err != nil {
		return nil, fmt.Errorf("release lookup: %w", err)
	}

	release := Release{
		MBID:        string(r.ID),
		Title:       r.Title,
		Artist:      getArtistName(r.ArtistCredit),
		Year:        r.Date.Year,
		Country:     string(r.CountryCode),
		TrackCount:  getTotalTracks(r.Media),
		DiscCount:   len(r.Media),
		Compilation: isCompilation(r.ArtistCredit),
	}

	for _, medium := range r.Media {
		for _, track := range medium.Tracks {
			release.Tracks = append(release.Tracks, Track{
				Num:    track.Position,
				Title:  track.Title,
				Artist: getTrackArtist(track, r.ArtistCredit),
			})
		}
	}

	return &release, nil
}

// SortReleasesByTrackMatch orders releases so those with exactly trackCount
// tracks come first, each group newest first. The input is not modified.
func SortReleasesByTrackMatch(releases []Release, trackCount int) []Release {
	sorted := slices.Clone(releases)
	slices.SortStableFunc(sorted, func(a, b Release) int {
		am, bm := a.TrackCount == trackCount, b.TrackCount == trackCount
		if am != bm {
			if am {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Year, a.Year)
	})
	return sorted
}

func getArtistName(credit musicbrainzws2.ArtistCredit) string {
	if len(credit) == 0 {
		return "Unknown Artist"
	}
	return credit.String()
}

func getTrackArtist(track musicbrainzws2.Track, albumCredit musicbrainzws2.ArtistCredit) string {
	// Use track's artist credit if present
	if len(track.ArtistCredit) > 0 {
		return track.ArtistCredit.String()
	}
	// Use recording's artist credit if different from album
	if len(track.Recording.ArtistCredit) > 0 {
		return track.Recording.ArtistCredit.String()
	}
	return getArtistName(albumCredit)
}

func isCompilation(credit musicbrainzws2.ArtistCredit) bool {
	if len(credit) == 0 {
		return false
	}
	return getArtistName(credit) == "Various Artists"
}

func getTotalTracks(media []musicbrainzws2.Medium) int {
	total := 0
	for _, m := range media {
		total += m.TrackCount
	}
	return total
}
