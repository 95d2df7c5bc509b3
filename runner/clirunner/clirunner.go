// Package clirunner runs a single roulette round in the terminal: spin the
// cuisine wheel, search, spin the restaurant wheel, print the result card.
package clirunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"dinewheel/cuisine"
	"dinewheel/geo"
	"dinewheel/places"
	"dinewheel/runner"
	"dinewheel/search"
	"dinewheel/wheel"
)

const (
	revealDuration      = 4 * time.Second
	cuisineTickInterval = 150 * time.Millisecond
	restTickInterval    = 200 * time.Millisecond

	revealWidth = 40
)

// demoLocation is used when no -geo flag was given.
var demoLocation = geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060}

type cliRunner struct {
	cfg      *runner.Config
	ctrl     *search.Controller
	geocoder *places.Geocoder
	out      io.Writer
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeCLI {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	logger := slog.Default()

	factory := func(context.Context) (search.Provider, error) {
		client := places.NewClient(cfg.GoogleMapsAPIKey)
		if err := client.Ready(); err != nil {
			return nil, err
		}

		return client, nil
	}

	ans := cliRunner{
		cfg:      cfg,
		ctrl:     search.NewController(factory, search.NewCache(), logger),
		geocoder: places.NewGeocoder(),
		out:      os.Stdout,
	}

	return &ans, nil
}

func (r *cliRunner) Run(ctx context.Context) error {
	origin := demoLocation
	if r.cfg.HasLocation {
		origin = r.cfg.Location
	}

	fmt.Fprintf(r.out, "📍 %s\n\n", r.address(ctx, origin))

	items := r.cfg.Cuisines
	if len(items) == 0 {
		items = cuisine.Wheel
	}

	cuisineState, err := wheel.Draw(len(items))
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, "Spinning the cuisine wheel...")

	if err := r.reveal(ctx, cuisineState, cuisineTickInterval, func(i int) string {
		return items[i]
	}); err != nil {
		return err
	}

	chosen := items[cuisineState.Index]
	fmt.Fprintf(r.out, "\n🎡 Tonight's cuisine: %s\n\n", chosen)

	crit := search.Criteria{
		Cuisine:     chosen,
		RadiusMiles: r.cfg.RadiusMiles,
		MinRating:   r.cfg.MinRating,
		MinReviews:  r.cfg.MinReviews,
		OpenNowOnly: r.cfg.OpenNow,
		Origin:      origin,
	}

	fmt.Fprintf(r.out, "Searching for %s within %.1f miles...\n", chosen, crit.RadiusMiles)

	rs, err := r.ctrl.Search(ctx, crit)
	if err != nil {
		if msg := search.UserMessage(err); msg != "" {
			fmt.Fprintf(r.out, "\n%s\n", msg)
		}

		if errors.Is(err, search.ErrNoResults) || errors.Is(err, search.ErrNoMatches) {
			return nil
		}

		return err
	}

	fmt.Fprintf(r.out, "Found %d restaurants. Spinning the restaurant wheel...\n", len(rs))

	restState, err := wheel.Draw(len(rs))
	if err != nil {
		return err
	}

	if err := r.reveal(ctx, restState, restTickInterval, func(i int) string {
		return rs[i].Name
	}); err != nil {
		return err
	}

	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, resultCard(rs[restState.Index]))

	return nil
}

func (r *cliRunner) Close(context.Context) error {
	return nil
}

func (r *cliRunner) address(ctx context.Context, c geo.Coordinate) string {
	addr, err := r.geocoder.ReverseGeocode(ctx, c)
	if err != nil {
		return fmt.Sprintf("Lat: %.4f, Lng: %.4f (%s)", c.Latitude, c.Longitude, c.PlusCode())
	}

	return addr
}

// reveal replays the wheel settling in place on one terminal line. The
// outcome is already fixed in state; this only animates it.
func (r *cliRunner) reveal(ctx context.Context, state wheel.State, interval time.Duration, label func(int) string) error {
	ticks := int(revealDuration / interval)
	seq := wheel.RevealSequence(state.Count, ticks, state.Index)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for _, idx := range seq {
		fmt.Fprintf(r.out, "\r  🎯 %s", runewidth.FillRight(runewidth.Truncate(label(idx), revealWidth, "…"), revealWidth))

		timer.Reset(interval)

		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)

			return ctx.Err()
		case <-timer.C:
		}
	}

	fmt.Fprintln(r.out)

	return nil
}

func resultCard(rest search.Restaurant) string {
	lines := []string{
		"🍽  " + rest.Name,
	}

	if rest.HasRating {
		lines = append(lines, fmt.Sprintf("⭐ %.1f (%d reviews)", rest.Rating, rest.ReviewCount))
	}

	lines = append(lines, fmt.Sprintf("📏 %.1f miles away", rest.DistanceMiles))

	if len(rest.CuisineTags) > 0 {
		lines = append(lines, "🏷  "+strings.Join(rest.CuisineTags, ", "))
	}

	if rest.Address != "" {
		lines = append(lines, "📍 "+rest.Address)
	}

	if rest.Phone != "" {
		lines = append(lines, "📞 "+rest.Phone)
	}

	lines = append(lines, "🗺  "+rest.MapsURL)

	return runner.Box(lines, 0)
}
