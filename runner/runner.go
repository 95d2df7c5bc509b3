// Package runner holds the process configuration and the terminal banner
// shared by the CLI and web entry points.
package runner

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"dinewheel/geo"
)

const (
	RunModeCLI = iota + 1
	RunModeWeb
)

var ErrInvalidRunMode = errors.New("invalid run mode")

type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

type Config struct {
	RunMode          int
	Debug            bool
	WebRunner        bool
	Addr             string
	CorsOrigins      []string
	GoogleMapsAPIKey string
	Location         geo.Coordinate
	HasLocation      bool
	Cuisines         []string
	RadiusMiles      float64
	MinRating        float64
	MinReviews       int
	OpenNow          bool
}

// parseGeo parses "lat,lng" coordinates.
func parseGeo(geoStr string) (geo.Coordinate, error) {
	parts := strings.Split(geoStr, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("invalid geo format: %s (use 'lat,lng')", geoStr)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude: %s", parts[0])
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude: %s", parts[1])
	}

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return geo.Coordinate{}, fmt.Errorf("coordinates out of range: %s", geoStr)
	}

	return geo.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func ParseConfig() *Config {
	_ = godotenv.Load()

	cfg := Config{}

	var (
		geoStr      string
		cuisines    string
		corsOrigins string
	)

	flag.BoolVar(&cfg.WebRunner, "web", false, "run the web server instead of a one-shot terminal roulette")
	flag.StringVar(&cfg.Addr, "addr", ":8080", "address to listen on for the web server")
	flag.StringVar(&corsOrigins, "cors-origins", "", "comma separated list of allowed CORS origins [default: any]")
	flag.StringVar(&cfg.GoogleMapsAPIKey, "api-key", "", "Google Maps API key [default: GOOGLE_MAPS_API_KEY env]")
	flag.StringVar(&geoStr, "geo", "", "coordinates to search around (e.g., '37.7749,-122.4194') [default: demo location]")
	flag.StringVar(&cuisines, "cuisines", "", "comma separated cuisines to spin between [default: the full wheel]")
	flag.Float64Var(&cfg.RadiusMiles, "radius", 5, "search radius in miles")
	flag.Float64Var(&cfg.MinRating, "min-rating", 0, "minimum star rating (0-5); places without a rating always pass")
	flag.IntVar(&cfg.MinReviews, "min-reviews", 0, "minimum review count")
	flag.BoolVar(&cfg.OpenNow, "open-now", false, "only places known to be open right now")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")

	flag.Parse()

	if cfg.GoogleMapsAPIKey == "" {
		cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	}

	if geoStr != "" {
		coord, err := parseGeo(geoStr)
		if err != nil {
			panic(err)
		}

		cfg.Location = coord
		cfg.HasLocation = true
	}

	if cfg.RadiusMiles <= 0 {
		panic("radius must be greater than 0")
	}

	if cfg.MinRating < 0 || cfg.MinRating > 5 {
		panic("min-rating must be between 0 and 5")
	}

	if cfg.MinReviews < 0 {
		panic("min-reviews must be greater than or equal to 0")
	}

	if cuisines != "" {
		for _, c := range strings.Split(cuisines, ",") {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}

			cfg.Cuisines = append(cfg.Cuisines, c)
		}
	}

	if corsOrigins != "" {
		cfg.CorsOrigins = strings.Split(corsOrigins, ",")
	}

	if cfg.WebRunner {
		cfg.RunMode = RunModeWeb
	} else {
		cfg.RunMode = RunModeCLI
	}

	return &cfg
}

func wrapText(text string, width int) []string {
	var lines []string

	currentLine := ""
	currentWidth := 0

	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width {
			lines = append(lines, currentLine)
			currentLine = string(r)
			currentWidth = runeWidth
		} else {
			currentLine += string(r)
			currentWidth += runeWidth
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

// Box renders messages inside a double-line box, wrapped to the given
// width. A non-positive width uses the terminal width, falling back to 80.
func Box(messages []string, width int) string {
	if width <= 0 {
		var err error

		width, _, err = term.GetSize(0)
		if err != nil {
			width = 80
		}
	}

	if width < 20 {
		width = 20
	}

	contentWidth := width - 4

	var wrappedLines []string
	for _, message := range messages {
		wrappedLines = append(wrappedLines, wrapText(message, contentWidth)...)
	}

	var builder strings.Builder

	builder.WriteString("╔" + strings.Repeat("═", width-2) + "╗\n")

	for _, line := range wrappedLines {
		lineWidth := runewidth.StringWidth(line)
		paddingRight := contentWidth - lineWidth

		if paddingRight < 0 {
			paddingRight = 0
		}

		builder.WriteString(fmt.Sprintf("║ %s%s ║\n", line, strings.Repeat(" ", paddingRight)))
	}

	builder.WriteString("╚" + strings.Repeat("═", width-2) + "╝\n")

	return builder.String()
}

func Banner() {
	message1 := "🎡 Dine Wheel"
	message2 := "Can't decide where to eat? Spin the cuisine wheel, then spin the restaurant wheel."

	fmt.Fprintln(os.Stderr, Box([]string{message1, message2}, 0))
}
