package httpserver

import (
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/feeds"
)

// feedTitleLimit caps how much of a message body lands in an entry title.
const feedTitleLimit = 128

// handleFeed renders a log's Atom feed, one entry per retained message,
// newest first.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	logID, ok := s.pathLogID(w, r)
	if !ok {
		return
	}
	meta, err := s.rt.Store().Metadata(r.Context(), logID)
	if err != nil {
		s.fault(w, r, err)
		return
	}
	msgs, err := s.rt.Store().Messages(r.Context(), logID)
	if err != nil {
		s.fault(w, r, err)
		return
	}

	logURL := s.logURL(logID)
	feed := &feeds.Feed{
		Title: "Loglet: " + meta.Title,
		Link:  &feeds.Link{Href: logURL},
		Id:    logURL,
	}
	if len(msgs) > 0 {
		feed.Updated = time.Unix(msgs[0].Time, 0).UTC()
	}

	for _, m := range msgs {
		body := m.Body
		titleBody := firstRunes(body, feedTitleLimit)
		entryURL := fmt.Sprintf("%s#%s", logURL, stringid(m.Seq))
		pub := time.Unix(m.Time, 0).UTC()
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       fmt.Sprintf("%d: %s", m.Level, titleBody),
			Link:        &feeds.Link{Href: entryURL},
			Id:          entryURL,
			Description: "<pre>" + body + "</pre>",
			Author:      &feeds.Author{Name: "Loglet"},
			Created:     pub,
			Updated:     pub,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		s.fault(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	fmt.Fprint(w, atom)
}

// firstRunes caps s at n characters without splitting a multi-byte rune.
func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
