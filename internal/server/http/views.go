package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	cfgpkg "github.com/sampsyo/loglet/internal/config"
	"github.com/sampsyo/loglet/internal/logstore"
)

//go:embed templates/*.html
var templateFS embed.FS

// TimeZone is one entry of the display timezone picker.
type TimeZone struct {
	Offset float64
	Name   string
}

// timeZones is the fixed picker list, ordered west to east.
var timeZones = []TimeZone{
	{-12.0, "Eniwetok, Kwajalein"},
	{-11.0, "Midway Island, Samoa"},
	{-10.0, "Hawaii"},
	{-9.0, "AKST"},
	{-8.0, "PST, AKDT"},
	{-7.0, "MST, PDT"},
	{-6.0, "CST, MDT, Mexico City"},
	{-5.0, "EST, CDT, Bogota, Lima"},
	{-4.0, "EDT, Atlantic Time, Caracas, La Paz"},
	{-3.5, "Newfoundland"},
	{-3.0, "Brazil, Buenos Aires, Georgetown"},
	{-2.0, "Mid-Atlantic"},
	{-1.0, "Azores, Cape Verde Islands"},
	{0.0, "Western Europe Time, London, Lisbon, Casablanca"},
	{1.0, "Brussels, Copenhagen, Madrid, Paris"},
	{2.0, "Kaliningrad, South Africa"},
	{3.0, "Baghdad, Riyadh, Moscow, St. Petersburg"},
	{3.5, "Tehran"},
	{4.0, "Abu Dhabi, Muscat, Baku, Tbilisi"},
	{4.5, "Kabul"},
	{5.0, "Ekaterinburg, Islamabad, Karachi, Tashkent"},
	{5.5, "Bombay, Calcutta, Madras, New Delhi"},
	{5.75, "Kathmandu"},
	{6.0, "Almaty, Dhaka, Colombo"},
	{7.0, "Bangkok, Hanoi, Jakarta"},
	{8.0, "Beijing, Perth, Singapore, Hong Kong"},
	{9.0, "Tokyo, Seoul, Osaka, Sapporo, Yakutsk"},
	{9.5, "Adelaide, Darwin"},
	{10.0, "Eastern Australia, Guam, Vladivostok"},
	{11.0, "Magadan, Solomon Islands, New Caledonia"},
	{12.0, "Auckland, Wellington, Fiji, Kamchatka"},
}

// views renders the HTML pages from embedded templates.
type views struct {
	tmpl *template.Template
	cfg  cfgpkg.Config
}

func newViews(cfg cfgpkg.Config) (*views, error) {
	funcs := template.FuncMap{
		"timeformat": timeformat,
		"tzrep":      tzrep,
		"stringid":   stringid,
		// levelname styles a message row; thresholds come from config.
		"levelname": func(level int) string {
			switch {
			case level >= cfg.LevelError:
				return "error"
			case level >= cfg.LevelWarn:
				return "warning"
			default:
				return "debug"
			}
		},
	}
	tmpl, err := template.New("loglet").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &views{tmpl: tmpl, cfg: cfg}, nil
}

// timeformat renders a unix timestamp shifted by a timezone offset in
// (possibly fractional) hours. Purely a display concern; storage stays UTC.
func timeformat(ts int64, tzoffset float64) string {
	dt := time.Unix(ts, 0).UTC().Add(time.Duration(tzoffset * float64(time.Hour)))
	return dt.Format("2006-01-02 15:04:05")
}

// tzrep depicts a timezone offset relative to UTC, e.g. "UTC +5:30".
func tzrep(tzoffset float64) string {
	if tzoffset == 0 {
		return "UTC"
	}
	hours := int(tzoffset)
	mins := tzoffset - float64(hours)
	if mins < 0 {
		mins = -mins
	}
	rep := fmt.Sprintf("%d:%02d", hours, int(mins*60))
	if tzoffset > 0 {
		rep = "+" + rep
	}
	return "UTC " + rep
}

// stringid turns a message sequence number into an HTML anchor name.
func stringid(seq uint64) string {
	return fmt.Sprintf("msg%d", seq)
}

type logViewData struct {
	LogID        string
	Title        string
	Notify       string
	TZOffset     float64
	TimeZones    []TimeZone
	Messages     []logstore.Message
	RefreshDelay int
}

// handleHome renders the front-page splash.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.views.tmpl.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.log.WithError(err).Error("render index")
	}
}

// handleLogView renders a log's HTML page, newest messages first.
func (s *Server) handleLogView(w http.ResponseWriter, r *http.Request) {
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

	tzoffset := 0.0
	if v := r.URL.Query().Get("tzoffset"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			tzoffset = f
		}
	}

	data := logViewData{
		LogID:        logID,
		Title:        meta.Title,
		Notify:       meta.Notify,
		TZOffset:     tzoffset,
		TimeZones:    timeZones,
		Messages:     msgs,
		RefreshDelay: s.rt.Config().RefreshDelaySeconds,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.views.tmpl.ExecuteTemplate(w, "log.html", data); err != nil {
		s.log.WithError(err).Error("render log view")
	}
}

func (v *views) renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = v.tmpl.ExecuteTemplate(w, "notfound.html", nil)
}

func (v *views) renderError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = v.tmpl.ExecuteTemplate(w, "error.html", nil)
}
