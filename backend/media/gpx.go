package media

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"
)

// Waypoint is one point of a GPS track, used by MAP scenes.
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
}

// TrackFromGPX parses a GPX file into an ordered list of waypoints. Track
// segments are concatenated in file order; route and standalone waypoints are
// appended after the tracks.
func TrackFromGPX(path string) ([]Waypoint, error) {
	doc, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX file %s: %w", path, err)
	}

	var points []Waypoint
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				points = append(points, waypointFromGPX(p))
			}
		}
	}
	for _, route := range doc.Routes {
		for _, p := range route.Points {
			points = append(points, waypointFromGPX(p))
		}
	}
	for _, p := range doc.Waypoints {
		points = append(points, waypointFromGPX(p))
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("GPX file %s contains no points", path)
	}
	return points, nil
}

func waypointFromGPX(p gpx.GPXPoint) Waypoint {
	w := Waypoint{Latitude: p.Latitude, Longitude: p.Longitude}
	if p.Elevation.NotNull() {
		w.Elevation = p.Elevation.Value()
	}
	return w
}

// TrackCenter returns the midpoint of the track's bounding box, used to
// position the map viewport.
func TrackCenter(points []Waypoint) (lat, lon float64) {
	if len(points) == 0 {
		return 0, 0
	}
	minLat, maxLat := points[0].Latitude, points[0].Latitude
	minLon, maxLon := points[0].Longitude, points[0].Longitude
	for _, p := range points[1:] {
		if p.Latitude < minLat {
			minLat = p.Latitude
		}
		if p.Latitude > maxLat {
			maxLat = p.Latitude
		}
		if p.Longitude < minLon {
			minLon = p.Longitude
		}
		if p.Longitude > maxLon {
			maxLon = p.Longitude
		}
	}
	return (minLat + maxLat) / 2, (minLon + maxLon) / 2
}
