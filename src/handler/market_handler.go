package handler

import (
	"net/http"
	"strings"

	"papertrade/src/marketcalendar"
	"papertrade/src/quotefeed"
)

type marketStatusService interface {
	MarketStatus() marketcalendar.MarketState
}

// MarketStatusHandler reports the current session state and the next opening
// time. It requires no authentication; the calendar is the same for everyone.
func MarketStatusHandler(service marketStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.MarketStatus())
	}
}

// QuotesHandler returns the latest snapshot for the requested symbols, e.g.
// GET /market/quotes?symbols=RELIANCE,TCS. Symbols with no data are simply
// absent from the result.
func QuotesHandler(feed quotefeed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("symbols")
		if strings.TrimSpace(raw) == "" {
			http.Error(w, "missing symbols", http.StatusBadRequest)
			return
		}

		var symbols []string
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) == 0 {
			http.Error(w, "missing symbols", http.StatusBadRequest)
			return
		}

		snapshot, err := feed.Snapshot(r.Context(), symbols)
		if err != nil {
			writeError(w, quotefeed.ErrUnavailable)
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}
