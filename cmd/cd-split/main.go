package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/binaryphile/cd-split/internal/metadata"
	"github.com/binaryphile/cd-split/internal/musicbrainz"
	"github.com/binaryphile/cd-split/internal/split"
	"github.com/binaryphile/cd-split/internal/tag"
)

const (
	appName    = "cd-split"
	appVersion = "1.0"
	appURL     = "https://github.com/binaryphile/cd-split"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 1
	}

	switch args[0] {
	case "split":
		return runSplit(ctx, args[1:], stdout, stderr)
	case "show":
		return runShow(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		usage(stderr)
		return 1
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [flags]\n\n", appName)
	fmt.Fprintf(w, "Split a CD image (WAV + CUE sheet) into one WAV file per track.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  split   Write one WAV file per track\n")
	fmt.Fprintf(w, "  show    Print the image layout and disc IDs\n\n")
	fmt.Fprintf(w, "Run '%s <command> -h' for command flags.\n", appName)
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func runSplit(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	fs.SetOutput(stderr)

	input := fs.String("i", "", "Input WAV image (CUE sheet read from the same base name)")
	fs.StringVar(input, "input-file", "", "Input WAV image")

	output := fs.String("o", ".", "Output directory")
	fs.StringVar(output, "output-file", ".", "Output directory")

	verbose := fs.Bool("v", false, "Verbose output")
	fs.BoolVar(verbose, "verbose", false, "Verbose output")

	safeNames := fs.Bool("safe-names", false, "Shell-safe ASCII filenames")
	id3 := fs.Bool("id3", false, "Embed an ID3v2.4 tag chunk in every track")
	metaPath := fs.String("metadata", "", "Album metadata JSON overriding the CUE sheet")
	lookup := fs.Bool("lookup", false, "Fill missing titles from MusicBrainz by disc ID")
	charset := fs.String("cue-charset", "", "CUE sheet text encoding (e.g. shift_jis, windows-1252)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s split -i <image.wav> [-o <dir>] [flags]\n\n", appName)
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *input == "" {
		fs.Usage()
		return 1
	}

	log := newLogger(stderr, *verbose)
	opts := split.DefaultOptions()
	opts.Logger = log
	opts.Charset = *charset
	opts.SafeNames = *safeNames
	opts.ID3 = *id3

	fmt.Fprintf(stdout, "%s - CD image splitter\n", appName)
	fmt.Fprintln(stdout, strings.Repeat("=", 60))
	fmt.Fprintf(stdout, "Input: %s\n", *input)

	plan, err := split.Prepare(*input, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !plan.MultiTrack {
		fmt.Fprintf(stderr, "Error: %v (expected %s)\n", split.ErrNoCueSheet, split.CuePath(*input))
		return 1
	}

	fmt.Fprintf(stdout, "CUE sheet: %s (%d tracks)\n", plan.CuePath, len(plan.Tracks))
	fmt.Fprintf(stdout, "Disc ID: %s\n", plan.DiscID())

	if *metaPath != "" {
		if err := applyMetadata(*metaPath, plan, &opts, log); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *lookup {
		lookupRelease(ctx, plan, &opts, stdout, log)
	}

	if err := os.MkdirAll(*output, 0755); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "\nWriting to: %s\n", *output)

	res, err := plan.Execute(*output, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// keyed by position, track numbers may repeat
	failed := make(map[int]error, len(res.Failed))
	for _, f := range res.Failed {
		failed[f.Index] = f.Err
	}
	for i, t := range plan.Tracks {
		secs := float64(t.SoundLength) / float64(plan.Container.Format.BytesPerSec)
		fmt.Fprintf(stdout, "  %02d. %s (%.1fs)... ", t.ID, plan.TrackMeta(i, opts).Title, secs)
		if err, ok := failed[i]; ok {
			fmt.Fprintf(stdout, "ERROR: %v\n", err)
			continue
		}
		fmt.Fprintf(stdout, "OK %s\n", plan.Filename(i, opts))
	}

	fmt.Fprintf(stdout, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(stdout, "Done! Wrote %d of %d tracks to %s\n", len(res.Written), len(plan.Tracks), *output)
	return 0
}

// applyMetadata loads manual album metadata into opts.
func applyMetadata(path string, plan *split.Plan, opts *split.Options, log logrus.FieldLogger) error {
	album, err := metadata.ParseJSON(path)
	if err != nil {
		return err
	}
	for _, verr := range album.Validate(len(plan.Tracks)) {
		log.WithField("metadata", path).Warn(verr)
	}

	opts.Override = album.ToRelease()

	cover, mimeType, err := album.LoadCoverArt()
	if err != nil {
		return err
	}
	if cover != nil {
		opts.Cover = &tag.Picture{Data: cover, MIMEType: mimeType}
	}
	return nil
}

// lookupRelease fills opts.Fallback from MusicBrainz. Failures only warn;
// the split goes ahead with the CUE sheet titles.
func lookupRelease(ctx context.Context, plan *split.Plan, opts *split.Options, stdout io.Writer, log logrus.FieldLogger) {
	client := musicbrainz.NewClient(appName, appVersion, appURL)
	defer client.Close()

	fmt.Fprintln(stdout, "Looking up on MusicBrainz...")
	releases, err := client.LookupByDiscID(ctx, plan.DiscID())
	if err != nil {
		log.WithError(err).Warn("MusicBrainz lookup failed")
		return
	}
	if len(releases) == 0 {
		log.Warn("no MusicBrainz release matches this disc ID")
		return
	}

	// exact track count matches first, then newest
	releases = musicbrainz.SortReleasesByTrackMatch(releases, len(plan.Tracks))
	best := releases[0]
	fmt.Fprintf(stdout, "Found: %s - %s (%d, %d tracks)\n", best.Artist, best.Title, best.Year, best.TrackCount)

	release, err := client.GetReleaseTracks(ctx, best.MBID)
	if err != nil {
		log.WithError(err).Warn("MusicBrainz track lookup failed")
		return
	}
	opts.Fallback = release

	if !opts.ID3 || opts.Cover != nil {
		return
	}
	cover, mimeType, err := client.GetCoverArt(ctx, release.MBID)
	switch {
	case err != nil:
		log.WithError(err).Warn("cover art fetch failed")
	case cover != nil:
		opts.Cover = &tag.Picture{Data: cover, MIMEType: mimeType}
		fmt.Fprintf(stdout, "Cover art: %d KB, %s\n", len(cover)/1024, mimeType)
	}
}
