package services

import (
	"time"

	"github.com/6tail/lunar-go/HolidayUtil"
	"github.com/6tail/lunar-go/calendar"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/at"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/be"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/ch"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fi"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/ie"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/no"
	"github.com/rickar/cal/v2/nz"
	"github.com/rickar/cal/v2/pl"
	"github.com/rickar/cal/v2/pt"
	"github.com/rickar/cal/v2/se"
	"github.com/rickar/cal/v2/us"
)

// holidayRegions lists every country the digest scheduler can observe.
// "CN" is handled separately through the lunar calendar tables, which
// carry the official makeup workdays alongside the holidays.
var holidayRegions = []struct {
	code string
	name string
	days []*cal.Holiday
}{
	{"US", "United States", us.Holidays},
	{"GB", "United Kingdom", gb.Holidays},
	{"DE", "Germany", de.Holidays},
	{"FR", "France", fr.Holidays},
	{"JP", "Japan", jp.Holidays},
	{"AU", "Australia", au.HolidaysNSW},
	{"CA", "Canada", ca.Holidays},
	{"NZ", "New Zealand", nz.Holidays},
	{"IT", "Italy", it.Holidays},
	{"ES", "Spain", es.Holidays},
	{"NL", "Netherlands", nl.Holidays},
	{"BE", "Belgium", be.Holidays},
	{"AT", "Austria", at.Holidays},
	{"CH", "Switzerland", ch.Holidays},
	{"SE", "Sweden", se.Holidays},
	{"NO", "Norway", no.Holidays},
	{"DK", "Denmark", dk.Holidays},
	{"FI", "Finland", fi.Holidays},
	{"PL", "Poland", pl.Holidays},
	{"PT", "Portugal", pt.Holidays},
	{"IE", "Ireland", ie.Holidays},
	{"BR", "Brazil", br.Holidays},
}

// HolidayService answers whether a date is a business day in a given
// country, used to decide if the daily digest should go out.
type HolidayService struct {
	calendars map[string]*cal.BusinessCalendar
}

func NewHolidayService() *HolidayService {
	s := &HolidayService{calendars: make(map[string]*cal.BusinessCalendar)}
	for _, region := range holidayRegions {
		c := cal.NewBusinessCalendar()
		c.Name = region.name
		c.AddHoliday(region.days...)
		s.calendars[region.code] = c
	}
	return s
}

// IsBusinessDay reports whether t is a working day for the country
// code. Unknown codes and "NONE" fall back to Monday through Friday.
func (s *HolidayService) IsBusinessDay(t time.Time, country string) bool {
	if country == "CN" {
		return s.isBusinessDayChina(t)
	}

	c, ok := s.calendars[country]
	if !ok {
		return !cal.IsWeekend(t)
	}
	return c.IsWorkday(t)
}

// isBusinessDayChina consults the lunar holiday tables. A weekend day
// can still be a makeup workday there, and the tables know which.
func (s *HolidayService) isBusinessDayChina(t time.Time) bool {
	solar := calendar.NewSolarFromDate(t)
	holiday := HolidayUtil.GetHolidayByYmd(solar.GetYear(), solar.GetMonth(), solar.GetDay())
	if holiday != nil {
		return holiday.IsWork()
	}

	weekday := t.Weekday()
	return weekday != time.Saturday && weekday != time.Sunday
}

type HolidayCountry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Countries returns the selectable holiday calendars for the admin UI
func (s *HolidayService) Countries() []HolidayCountry {
	out := []HolidayCountry{{Code: "CN", Name: "China"}}
	for _, region := range holidayRegions {
		out = append(out, HolidayCountry{Code: region.code, Name: region.name})
	}
	out = append(out, HolidayCountry{Code: "NONE", Name: "Weekends only"})
	return out
}

// IsValidCountry reports whether code names a supported calendar
func (s *HolidayService) IsValidCountry(code string) bool {
	if code == "CN" || code == "NONE" {
		return true
	}
	_, ok := s.calendars[code]
	return ok
}
