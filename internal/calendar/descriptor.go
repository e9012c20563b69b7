package calendar

import (
	"strings"
	"time"
)

// EventDescriptor is the normalized calendar event handed to the link
// renderer. Date and time components are kept as explicit integers in the
// source wall-clock (fixed Eastern US civil time for this app); a time.Time
// here would invite exactly the timezone conversion the renderer must avoid.
type EventDescriptor struct {
	Title       string
	Description string
	Location    string
	URL         string

	StartYear, StartMonth, StartDay, StartHours, StartMinutes int
	EndYear, EndMonth, EndDay, EndHours, EndMinutes           int

	// AllDay marks date-range events (festivals): 00:00 start, 23:59 end.
	AllDay bool
}

type ParkRef struct {
	Name string `json:"name"`
}

type ArtistRef struct {
	Name string `json:"name"`
}

type VenueRef struct {
	Name            string   `json:"name"`
	LocationDetails string   `json:"location_details"`
	Park            *ParkRef `json:"park"`
	Parks           *ParkRef `json:"parks"`
}

// ConcertRecord tolerates both historical field-naming conventions the
// catalog has used for nested relations (singular "artist"/"venue" and
// plural "artists"/"venues"). normalizeConcert folds them into one shape
// before any descriptor logic runs.
type ConcertRecord struct {
	ID        string     `json:"id"`
	Artist    *ArtistRef `json:"artist"`
	Artists   *ArtistRef `json:"artists"`
	Venue     *VenueRef  `json:"venue"`
	Venues    *VenueRef  `json:"venues"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Notes     string     `json:"notes"`
}

type FestivalRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	WebsiteURL  string   `json:"website_url"`
	Park        *ParkRef `json:"park"`
	Parks       *ParkRef `json:"parks"`
}

func normalizeConcert(rec ConcertRecord) (artist *ArtistRef, venue *VenueRef, ok bool) {
	artist = rec.Artist
	if artist == nil {
		artist = rec.Artists
	}
	venue = rec.Venue
	if venue == nil {
		venue = rec.Venues
	}
	if artist == nil || venue == nil || artist.Name == "" || venue.Name == "" {
		return nil, nil, false
	}
	return artist, venue, true
}

func (v *VenueRef) park() *ParkRef {
	if v.Park != nil {
		return v.Park
	}
	return v.Parks
}

// FromConcert builds a descriptor for a single performance. It returns nil
// when the record cannot resolve an artist and a venue, or when the start
// timestamp has no parseable calendar date; a partial descriptor is never
// produced. The deep link should already be absolute.
func FromConcert(rec ConcertRecord, link string) *EventDescriptor {
	artist, venue, ok := normalizeConcert(rec)
	if !ok {
		return nil
	}

	startDate, err := parseCalendarDate(rec.StartTime)
	if err != nil {
		return nil
	}
	// Hour/minute always come from the raw string, never from the parse
	// above, which is trusted for year/month/day only.
	startH, startM := ExtractTimeParts(rec.StartTime)

	endDate := startDate
	var endH, endM int
	haveEnd := false
	if rec.EndTime != "" {
		if d, err := parseCalendarDate(rec.EndTime); err == nil {
			endDate = d
		}
		endH, endM = ExtractTimeParts(rec.EndTime)
		haveEnd = true
	}
	if haveEnd && wallBefore(endDate, endH, endM, startDate, startH, startM) {
		// a stored end earlier than the start is bad data; ignore it
		endDate, haveEnd = startDate, false
	}
	if !haveEnd {
		// No usable end: default to one hour after the start. The hour
		// wraps modulo 24 with the calendar day left alone, matching the
		// behavior users have seen since launch.
		endH, endM = (startH+1)%24, startM
	}

	var desc strings.Builder
	desc.WriteString(artist.Name + " live at " + venue.Name)
	if venue.LocationDetails != "" {
		desc.WriteString("\n" + venue.LocationDetails)
	}
	if rec.Notes != "" {
		desc.WriteString("\n\n" + rec.Notes)
	}
	desc.WriteString("\n\nEvent details: " + link)

	locParts := []string{venue.Name}
	if venue.LocationDetails != "" {
		locParts = append(locParts, venue.LocationDetails)
	}
	if p := venue.park(); p != nil && p.Name != "" {
		locParts = append(locParts, p.Name)
	}

	return &EventDescriptor{
		Title:        artist.Name + " at " + venue.Name,
		Description:  desc.String(),
		Location:     strings.Join(locParts, ", "),
		URL:          link,
		StartYear:    startDate.Year(),
		StartMonth:   int(startDate.Month()),
		StartDay:     startDate.Day(),
		StartHours:   startH,
		StartMinutes: startM,
		EndYear:      endDate.Year(),
		EndMonth:     int(endDate.Month()),
		EndDay:       endDate.Day(),
		EndHours:     endH,
		EndMinutes:   endM,
	}
}

// FromFestival builds an all-day descriptor spanning the festival's date
// range. Both dates are required; nil is returned otherwise.
func FromFestival(rec FestivalRecord, link string) *EventDescriptor {
	if rec.StartDate == "" || rec.EndDate == "" {
		return nil
	}
	start, err := parseCalendarDate(rec.StartDate)
	if err != nil {
		return nil
	}
	end, err := parseCalendarDate(rec.EndDate)
	if err != nil {
		return nil
	}

	park := rec.Park
	if park == nil {
		park = rec.Parks
	}

	var desc strings.Builder
	if rec.Description != "" {
		desc.WriteString(rec.Description)
	} else {
		desc.WriteString(rec.Name)
	}
	if park != nil && park.Name != "" {
		desc.WriteString("\nAt " + park.Name)
	}
	if rec.WebsiteURL != "" {
		desc.WriteString("\n" + rec.WebsiteURL)
	}
	desc.WriteString("\n\nEvent details: " + link)

	location := ""
	if park != nil {
		location = park.Name
	}

	return &EventDescriptor{
		Title:        rec.Name,
		Description:  desc.String(),
		Location:     location,
		URL:          link,
		StartYear:    start.Year(),
		StartMonth:   int(start.Month()),
		StartDay:     start.Day(),
		StartHours:   0,
		StartMinutes: 0,
		EndYear:      end.Year(),
		EndMonth:     int(end.Month()),
		EndDay:       end.Day(),
		EndHours:     23,
		EndMinutes:   59,
		AllDay:       true,
	}
}

func wallBefore(ad time.Time, ah, am int, bd time.Time, bh, bm int) bool {
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	if ah != bh {
		return ah < bh
	}
	return am < bm
}

// parseCalendarDate reads the leading YYYY-MM-DD of a timestamp or date
// string. Only year/month/day are ever taken from the result.
func parseCalendarDate(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return time.Parse("2006-01-02", s)
}
