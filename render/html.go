package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
)

const pageTemplate = `{{define "word" -}}
<span class="word-unit{{if .Multi}} multi-reading{{end}}"{{if .Multi}} data-alternatives='{{toJson .Alternatives}}'{{end}} data-current-reading='{{.Current}}'><span class="stack"><span class="ruby-wrap"><ruby><rb>{{.Base}}</rb>{{if .RT}}<rt class="reading-text">{{.RT}}</rt>{{end}}</ruby></span>{{if .Suffix}}<span class="okurigana">{{.Suffix}}</span>{{end}}</span></span>
{{- end}}<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title | default "Lyrics"}}</title>
</head>
<body>
<div class="lyrics-container">
<div id="lyrics-output">
{{range .Lines}}<p>{{range .}}{{template "word" .}}{{end}}</p>
{{end}}</div>
</div>
</body>
</html>
`

var page = template.Must(template.New("page").Funcs(sprig.HtmlFuncMap()).Parse(pageTemplate))

type wordView struct {
	Multi        bool
	Alternatives []string
	Current      string
	Base         string
	RT           string
	Suffix       string
}

type pageView struct {
	Title string
	Lines [][]wordView
}

// HTML writes the document as a standalone page of ruby markup.
func (d *Document) HTML(w io.Writer, title string) error {
	view := pageView{Title: title, Lines: make([][]wordView, len(d.lines))}
	for i, l := range d.lines {
		words := make([]wordView, len(l.words))
		for k, wd := range l.words {
			words[k] = wordView{
				Multi:        wd.Multi(),
				Alternatives: wd.Token.Alternatives,
				Current:      wd.current,
				Base:         wd.Seg.BaseMain,
				RT:           wd.rt,
				Suffix:       wd.Seg.Suffix,
			}
		}
		view.Lines[i] = words
	}
	if err := page.Execute(w, view); err != nil {
		return fmt.Errorf("render: html: %w", err)
	}
	return nil
}
