package render

import (
	"encoding/json"
	"html/template"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Document is everything the HTML artifact needs.
type Document struct {
	Title         string
	DefaultMetric string
	Collection    *geojson.FeatureCollection
}

// WriteHTML writes the self-contained interactive map to path. The GeoJSON is
// inlined; Leaflet loads from its CDN so the file stays a single artifact.
func WriteHTML(path string, doc Document) error {
	if doc.DefaultMetric == "" {
		doc.DefaultMetric = Metrics[len(Metrics)-1]
	}
	if !validMetric(doc.DefaultMetric) {
		return eris.Errorf("render: unknown metric %q", doc.DefaultMetric)
	}

	data, err := json.Marshal(doc.Collection)
	if err != nil {
		return eris.Wrap(err, "render: marshal geojson")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	err = pageTemplate.Execute(f, struct {
		Title         string
		DefaultMetric string
		Metrics       []string
		GeoJSON       template.JS
	}{
		Title:         doc.Title,
		DefaultMetric: doc.DefaultMetric,
		Metrics:       Metrics,
		GeoJSON:       template.JS(data), //nolint:gosec // json.Marshal output
	})
	if err != nil {
		return eris.Wrap(err, "render: execute template")
	}

	return nil
}

func validMetric(name string) bool {
	for _, m := range Metrics {
		if m == name {
			return true
		}
	}
	return false
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .panel {
    position: absolute; top: 10px; right: 10px; z-index: 1000;
    background: white; padding: 8px 12px; border-radius: 4px;
    box-shadow: 0 1px 4px rgba(0,0,0,0.3); font: 13px sans-serif;
  }
  .legend { line-height: 18px; }
  .legend i { width: 18px; height: 18px; float: left; margin-right: 6px; opacity: 0.8; }
</style>
</head>
<body>
<div id="map"></div>
<div class="panel">
  <strong>{{.Title}}</strong><br>
  {{range .Metrics}}
  <label><input type="radio" name="metric" value="{{.}}"> {{.}}</label><br>
  {{end}}
</div>
<script>
var data = {{.GeoJSON}};
var metric = {{.DefaultMetric}};

var map = L.map('map');
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var colors = ['#ffffcc','#c2e699','#78c679','#31a354','#006837'];

function breaks(name) {
  var vals = data.features
    .map(function (f) { return f.properties[name]; })
    .filter(function (v) { return v !== null && v !== undefined; })
    .sort(function (a, b) { return a - b; });
  var bs = [];
  for (var i = 1; i < colors.length; i++) {
    bs.push(vals[Math.floor(vals.length * i / colors.length)]);
  }
  return bs;
}

function colorFor(v, bs) {
  if (v === null || v === undefined) { return '#bbbbbb'; }
  for (var i = 0; i < bs.length; i++) {
    if (v <= bs[i]) { return colors[i]; }
  }
  return colors[colors.length - 1];
}

var layer;
function draw() {
  if (layer) { map.removeLayer(layer); }
  var bs = breaks(metric);
  layer = L.geoJSON(data, {
    style: function (f) {
      return {
        fillColor: colorFor(f.properties[metric], bs),
        fillOpacity: 0.7, color: '#555', weight: 1
      };
    },
    onEachFeature: function (f, l) {
      var v = f.properties[metric];
      l.bindTooltip(
        f.properties.region + '<br>' + metric + ': ' +
        (v === null || v === undefined ? 'no data' : v.toFixed(2) + ' /km²')
      );
    }
  }).addTo(map);
  map.fitBounds(layer.getBounds());
}

var radios = document.querySelectorAll('input[name=metric]');
radios.forEach(function (r) {
  r.checked = (r.value === metric);
  r.addEventListener('change', function () { metric = r.value; draw(); });
});

draw();
</script>
</body>
</html>
`))
