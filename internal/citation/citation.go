// Package citation renders catalog entries as bibliography records.
package citation

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/nickng/bibtex"

	"paperapi/internal/model"
)

// Key builds a cite key of the form <author><year><firstword>, e.g. vaswani2017attention.
func Key(p *model.WhitePaper) string {
	author := "unknown"
	if fields := strings.Fields(p.Author); len(fields) > 0 {
		author = slug.Make(fields[len(fields)-1])
	}
	word := "paper"
	for _, w := range strings.Fields(p.Title) {
		if s := slug.Make(w); s != "" {
			word = strings.ReplaceAll(s, "-", "")
			break
		}
	}
	return strings.ReplaceAll(author, "-", "") + strconv.Itoa(p.CreatedAt.Year()) + word
}

// BibTeX renders p as a @misc entry. category and url are omitted when empty.
func BibTeX(p *model.WhitePaper, category, url string) string {
	entry := bibtex.NewBibEntry("misc", Key(p))
	entry.AddField("title", bibtex.NewBibConst(p.Title))
	entry.AddField("author", bibtex.NewBibConst(p.Author))
	entry.AddField("year", bibtex.NewBibConst(strconv.Itoa(p.CreatedAt.Year())))
	if url != "" {
		entry.AddField("url", bibtex.NewBibConst(url))
		entry.AddField("howpublished", bibtex.NewBibConst(`\url{`+url+`}`))
	}
	if category != "" {
		entry.AddField("keywords", bibtex.NewBibConst(category))
	}
	entry.AddField("note", bibtex.NewBibConst("White paper"))

	bib := bibtex.NewBibTex()
	bib.AddEntry(entry)
	return bib.PrettyString()
}
