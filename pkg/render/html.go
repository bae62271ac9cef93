package render

import (
	"bytes"
	"html/template"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// SliderFrame is one step of a SliderPage.
type SliderFrame struct {
	Label string
	SVG   []byte
}

// SliderPage is a standalone HTML page showing one inline SVG frame at a
// time, selected with a range slider.
type SliderPage struct {
	Title  string
	Prefix string // slider caption before the frame label, e.g. "Year: "
	Frames []SliderFrame
}

var sliderTmpl = template.Must(template.New("slider").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1em; }
.frame { display: none; }
.frame.active { display: block; }
#caption { font-weight: bold; }
</style>
</head>
<body>
{{range $i, $f := .Frames}}<div class="frame{{if eq $i 0}} active{{end}}" data-label="{{$f.Label}}">
{{$f.SVG}}
</div>
{{end}}<p><span id="caption">{{.Prefix}}{{with index .Frames 0}}{{.Label}}{{end}}</span></p>
<input id="slider" type="range" min="0" max="{{.Last}}" value="0" step="1" style="width: 60%">
<script>
(function () {
  var frames = document.querySelectorAll(".frame");
  var caption = document.getElementById("caption");
  var prefix = {{.Prefix}};
  document.getElementById("slider").addEventListener("input", function (e) {
    frames.forEach(function (f, i) { f.classList.toggle("active", i === +e.target.value); });
    caption.textContent = prefix + frames[+e.target.value].dataset.label;
  });
})();
</script>
</body>
</html>
`))

type sliderView struct {
	Title  string
	Prefix string
	Last   int
	Frames []sliderViewFrame
}

type sliderViewFrame struct {
	Label string
	SVG   template.HTML
}

// Render executes the page template. Anything before the <svg element of
// each frame (XML prolog, doctype) is dropped.
func (p SliderPage) Render() ([]byte, error) {
	if len(p.Frames) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "slider page has no frames")
	}
	v := sliderView{Title: p.Title, Prefix: p.Prefix, Last: len(p.Frames) - 1}
	for _, f := range p.Frames {
		v.Frames = append(v.Frames, sliderViewFrame{Label: f.Label, SVG: template.HTML(InlineSVG(f.SVG))})
	}
	var buf bytes.Buffer
	if err := sliderTmpl.Execute(&buf, v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render slider page")
	}
	return buf.Bytes(), nil
}

// InlineSVG strips everything before the opening <svg tag.
func InlineSVG(svg []byte) []byte {
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		return svg[i:]
	}
	return svg
}
