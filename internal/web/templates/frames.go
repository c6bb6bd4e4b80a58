package templates

import (
	"cmp"
	"slices"

	"github.com/JonMunkholm/booksdash/internal/core"
)

// FrameEntry is one country shown in a choropleth frame.
type FrameEntry struct {
	Country       string
	CountryCode   string
	AverageRating float64
}

// Frame is the set of countries with books published in Year.
type Frame struct {
	Year    int
	Entries []FrameEntry
}

// ChoroplethFrames groups choropleth points into one frame per year, in
// year order. Each country appears once per frame, and entries are sorted by
// country name.
func ChoroplethFrames(points []core.ChoroplethPoint) []Frame {
	frames := make([]Frame, 0)
	seen := make(map[string]struct{})

	for _, pt := range points {
		if len(frames) == 0 || frames[len(frames)-1].Year != pt.YearOfPublication {
			frames = append(frames, Frame{Year: pt.YearOfPublication})
			clear(seen)
		}
		if _, dup := seen[pt.Country]; dup {
			continue
		}
		seen[pt.Country] = struct{}{}

		last := &frames[len(frames)-1]
		last.Entries = append(last.Entries, FrameEntry{
			Country:       pt.Country,
			CountryCode:   pt.CountryCode,
			AverageRating: pt.AverageRating,
		})
	}

	for i := range frames {
		slices.SortFunc(frames[i].Entries, func(a, b FrameEntry) int {
			return cmp.Compare(a.Country, b.Country)
		})
	}
	return frames
}

// FrameFor returns the frame for year, or an empty frame.
func FrameFor(frames []Frame, year int) Frame {
	i, found := slices.BinarySearchFunc(frames, year, func(f Frame, y int) int {
		return cmp.Compare(f.Year, y)
	})
	if !found {
		return Frame{Year: year}
	}
	return frames[i]
}
