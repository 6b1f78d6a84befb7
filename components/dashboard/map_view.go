package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// mapOutline is the simplified country outline in the 100x60 map viewport.
var mapOutline = [][]float64{
	{10, 10}, {30, 5}, {50, 8}, {70, 12}, {90, 10}, {95, 30},
	{85, 45}, {70, 50}, {50, 55}, {30, 45}, {15, 40}, {10, 25}, {10, 10},
}

// regionAnchors positions known regions inside the outline.
var regionAnchors = map[string][2]float64{
	"north":   {45, 14},
	"central": {50, 30},
	"south":   {50, 47},
	"east":    {80, 28},
	"west":    {20, 26},
}

// defaultMarkers are drawn when a dataset carries no recognizable region column.
var defaultMarkers = [][2]float64{{25, 20}, {45, 25}, {65, 30}, {75, 20}}

// MapMarker is a region marker in viewport coordinates.
type MapMarker struct {
	Region string  `json:"region,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Count  int     `json:"count"`
}

// MapView is the map-mode output: an outline, region markers, and the same data as GeoJSON.
type MapView struct {
	Caption string          `json:"caption"`
	Outline string          `json:"outline"`
	Markers []MapMarker     `json:"markers"`
	GeoJSON json.RawMessage `json:"geojson"`
}

// MapRenderer turns a dataset into a region map.
type MapRenderer struct {
	outline [][]float64
	anchors map[string][2]float64
}

// NewMapRenderer builds a renderer using the built-in outline and region anchors.
func NewMapRenderer() *MapRenderer {
	return &MapRenderer{outline: mapOutline, anchors: regionAnchors}
}

// Render groups records by their "region" field, one marker per known region in first-seen order.
func (m *MapRenderer) Render(ds Dataset) (MapView, error) {
	view := MapView{
		Caption: fmt.Sprintf("Geographic visualization of %s data by region", ds.Type),
		Outline: svgPath(m.outline),
		Markers: m.markers(ds),
	}
	collection := geojson.NewFeatureCollection()
	outline := geojson.NewPolygonFeature([][][]float64{m.outline})
	outline.SetProperty("kind", "outline")
	collection.AddFeature(outline)
	for _, marker := range view.Markers {
		point := geojson.NewPointFeature([]float64{marker.X, marker.Y})
		point.SetProperty("kind", "marker")
		if marker.Region != "" {
			point.SetProperty("region", marker.Region)
		}
		point.SetProperty("count", marker.Count)
		collection.AddFeature(point)
	}
	raw, err := collection.MarshalJSON()
	if err != nil {
		return MapView{}, fmt.Errorf("dashboard: encode map features: %w", err)
	}
	view.GeoJSON = raw
	return view, nil
}

func (m *MapRenderer) markers(ds Dataset) []MapMarker {
	var markers []MapMarker
	index := map[string]int{}
	for _, rec := range ds.Records {
		value, ok := rec.Get("region")
		if !ok {
			continue
		}
		region := strings.ToLower(strings.TrimSpace(value.String()))
		anchor, known := m.anchors[region]
		if !known {
			continue
		}
		if i, seen := index[region]; seen {
			markers[i].Count++
			continue
		}
		index[region] = len(markers)
		markers = append(markers, MapMarker{Region: value.String(), X: anchor[0], Y: anchor[1], Count: 1})
	}
	if len(markers) > 0 {
		return markers
	}
	markers = make([]MapMarker, len(defaultMarkers))
	for i, pos := range defaultMarkers {
		markers[i] = MapMarker{X: pos[0], Y: pos[1]}
	}
	return markers
}

func svgPath(points [][]float64) string {
	var b strings.Builder
	for i, p := range points {
		if i == len(points)-1 && i > 0 && p[0] == points[0][0] && p[1] == points[0][1] {
			break
		}
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		fmt.Fprintf(&b, "%g,%g", p[0], p[1])
	}
	b.WriteString(" Z")
	return b.String()
}
