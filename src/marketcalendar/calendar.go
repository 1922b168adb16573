package marketcalendar

import (
	"time"

	logger "github.com/sirupsen/logrus"
)

// ----- market status labels -----

type Status string

const (
	StatusOpen           Status = "OPEN"
	StatusPreMarket      Status = "PRE_MARKET"
	StatusPostMarket     Status = "POST_MARKET"
	StatusClosedWeekend  Status = "CLOSED_WEEKEND"
	StatusClosedHoliday  Status = "CLOSED_HOLIDAY"
	StatusClosedOffHours Status = "CLOSED_OFF_HOURS"
)

// BSE/NSE cash-market hours, wall clock in IST.
const (
	preMarketStartHour   = 9
	preMarketStartMinute = 0
	openHour             = 9
	openMinute           = 15
	closeHour            = 15
	closeMinute          = 30
	postMarketEndHour    = 16
	postMarketEndMinute  = 0
)

// MarketState is the answer handed to the presentation layer.
type MarketState struct {
	IsOpen   bool      `json:"is_open"`
	Status   Status    `json:"status"`
	Message  string    `json:"message"`
	NextOpen time.Time `json:"next_open,omitzero"`
}

// Calendar answers whether trading is permitted at a given instant. It is
// pure: same instant, same answer.
type Calendar struct {
	loc      *time.Location
	holidays map[string]struct{}

	// override forces CanTradeAt to true regardless of the clock. It exists
	// for development and tests only and is logged loudly when enabled.
	override bool
}

// New builds a Calendar for the exchange timezone with the static holiday set.
func New(override bool) *Calendar {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// IST has no DST; a fixed offset is an exact fallback.
		loc = time.FixedZone("IST", 5*3600+1800)
	}

	if override {
		logger.Warn("market calendar override ENABLED: trading allowed at any time, do not use in production")
	}

	return &Calendar{
		loc:      loc,
		holidays: tradingHolidays(),
		override: override,
	}
}

// Override reports whether the dev override is active.
func (c *Calendar) Override() bool {
	return c.override
}

// StatusAt classifies the instant t against the trading session.
func (c *Calendar) StatusAt(t time.Time) Status {
	lt := t.In(c.loc)

	if lt.Weekday() == time.Saturday || lt.Weekday() == time.Sunday {
		return StatusClosedWeekend
	}

	if c.isHoliday(lt) {
		return StatusClosedHoliday
	}

	hm := lt.Hour()*100 + lt.Minute()
	switch {
	case hm >= preMarketStartHour*100+preMarketStartMinute && hm < openHour*100+openMinute:
		return StatusPreMarket
	case hm >= openHour*100+openMinute && hm <= closeHour*100+closeMinute:
		return StatusOpen
	case hm > closeHour*100+closeMinute && hm < postMarketEndHour*100+postMarketEndMinute:
		return StatusPostMarket
	default:
		return StatusClosedOffHours
	}
}

// CanTradeAt returns true only while the market is OPEN, unless the dev
// override is active.
func (c *Calendar) CanTradeAt(t time.Time) bool {
	if c.override {
		return true
	}
	return c.StatusAt(t) == StatusOpen
}

// NextOpenAfter returns the next session open at or after t.
func (c *Calendar) NextOpenAfter(t time.Time) time.Time {
	lt := t.In(c.loc)

	candidate := time.Date(lt.Year(), lt.Month(), lt.Day(), openHour, openMinute, 0, 0, c.loc)
	if !lt.Before(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	for candidate.Weekday() == time.Saturday || candidate.Weekday() == time.Sunday || c.isHoliday(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	return candidate
}

// StateAt bundles status, message and next open for the API contract.
func (c *Calendar) StateAt(t time.Time) MarketState {
	status := c.StatusAt(t)

	state := MarketState{
		IsOpen: status == StatusOpen,
		Status: status,
	}

	switch status {
	case StatusOpen:
		state.Message = "Market is open for trading"
	case StatusPreMarket:
		state.Message = "Pre-market period, market opens at 9:15 AM IST"
	case StatusPostMarket:
		state.Message = "Post-market period"
	case StatusClosedWeekend:
		state.Message = "Market is closed on weekends"
	case StatusClosedHoliday:
		state.Message = "Market is closed for a trading holiday"
	default:
		state.Message = "Market is closed"
	}

	if status != StatusOpen {
		state.NextOpen = c.NextOpenAfter(t)
	}

	return state
}

func (c *Calendar) isHoliday(lt time.Time) bool {
	_, ok := c.holidays[lt.Format("2006-01-02")]
	return ok
}
