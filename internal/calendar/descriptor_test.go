package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLink = "https://encorelando.com/concerts/42"

func testConcert() ConcertRecord {
	return ConcertRecord{
		ID:        "42",
		Artist:    &ArtistRef{Name: "Test Band"},
		Venue:     &VenueRef{Name: "Main Stage"},
		StartTime: "2025-06-01T20:00:00",
		EndTime:   "2025-06-01T21:30:00",
	}
}

func TestFromConcert(t *testing.T) {
	d := FromConcert(testConcert(), testLink)
	require.NotNil(t, d)

	assert.Equal(t, "Test Band at Main Stage", d.Title)
	assert.Equal(t, testLink, d.URL)
	assert.Contains(t, d.Description, testLink)
	assert.Equal(t, "Main Stage", d.Location)
	assert.False(t, d.AllDay)

	assert.Equal(t, 2025, d.StartYear)
	assert.Equal(t, 6, d.StartMonth)
	assert.Equal(t, 1, d.StartDay)
	assert.Equal(t, 20, d.StartHours)
	assert.Equal(t, 0, d.StartMinutes)
	assert.Equal(t, 21, d.EndHours)
	assert.Equal(t, 30, d.EndMinutes)
}

func TestFromConcertDefaultEnd(t *testing.T) {
	rec := testConcert()
	rec.EndTime = ""
	d := FromConcert(rec, testLink)
	require.NotNil(t, d)

	// start + 1 hour, minutes unchanged
	assert.Equal(t, 21, d.EndHours)
	assert.Equal(t, 0, d.EndMinutes)
	assert.Equal(t, d.StartDay, d.EndDay)
}

func TestFromConcertDefaultEndWrapsMidnight(t *testing.T) {
	rec := testConcert()
	rec.StartTime = "2025-06-01T23:30:00"
	rec.EndTime = ""
	d := FromConcert(rec, testLink)
	require.NotNil(t, d)

	// hour wraps modulo 24; the calendar day is left alone
	assert.Equal(t, 0, d.EndHours)
	assert.Equal(t, 30, d.EndMinutes)
	assert.Equal(t, 1, d.EndDay)
}

func TestFromConcertPluralNaming(t *testing.T) {
	rec := ConcertRecord{
		ID:        "42",
		Artists:   &ArtistRef{Name: "Test Band"},
		Venues:    &VenueRef{Name: "Main Stage", Parks: &ParkRef{Name: "EPCOT"}},
		StartTime: "2025-06-01T20:00:00",
	}
	d := FromConcert(rec, testLink)
	require.NotNil(t, d)
	assert.Equal(t, "Test Band at Main Stage", d.Title)
	assert.Equal(t, "Main Stage, EPCOT", d.Location)
}

func TestFromConcertMissingRelations(t *testing.T) {
	rec := testConcert()
	rec.Artist = nil
	assert.Nil(t, FromConcert(rec, testLink))

	rec = testConcert()
	rec.Venue = nil
	assert.Nil(t, FromConcert(rec, testLink))

	// no artist under either naming convention
	assert.Nil(t, FromConcert(ConcertRecord{
		Venue:     &VenueRef{Name: "Main Stage"},
		StartTime: "2025-06-01T20:00:00",
	}, testLink))
}

func TestFromConcertEndBeforeStartIgnored(t *testing.T) {
	rec := testConcert()
	rec.EndTime = "2025-06-01T19:00:00"
	d := FromConcert(rec, testLink)
	require.NotNil(t, d)

	// bad stored end falls back to the synthesized one-hour default
	assert.Equal(t, 21, d.EndHours)
	assert.Equal(t, 0, d.EndMinutes)
	assert.Equal(t, d.StartDay, d.EndDay)
}

func TestFromConcertBadStartDate(t *testing.T) {
	rec := testConcert()
	rec.StartTime = "whenever"
	assert.Nil(t, FromConcert(rec, testLink))
}

func TestFromConcertLocationParts(t *testing.T) {
	rec := testConcert()
	rec.Venue = &VenueRef{
		Name:            "America Gardens Theatre",
		LocationDetails: "American Adventure Pavilion",
		Park:            &ParkRef{Name: "EPCOT"},
	}
	d := FromConcert(rec, testLink)
	require.NotNil(t, d)
	assert.Equal(t, "America Gardens Theatre, American Adventure Pavilion, EPCOT", d.Location)
}

func TestFromFestival(t *testing.T) {
	rec := FestivalRecord{
		ID:          "7",
		Name:        "Flower & Garden Festival",
		Description: "Garden Rocks concert series",
		StartDate:   "2025-03-05",
		EndDate:     "2025-06-02",
		WebsiteURL:  "https://example.com/festival",
		Park:        &ParkRef{Name: "EPCOT"},
	}
	d := FromFestival(rec, "https://encorelando.com/festivals/7")
	require.NotNil(t, d)

	assert.True(t, d.AllDay)
	assert.Equal(t, "Flower & Garden Festival", d.Title)
	assert.Equal(t, "EPCOT", d.Location)
	assert.Equal(t, 0, d.StartHours)
	assert.Equal(t, 0, d.StartMinutes)
	assert.Equal(t, 23, d.EndHours)
	assert.Equal(t, 59, d.EndMinutes)
	assert.Equal(t, 2025, d.StartYear)
	assert.Equal(t, 3, d.StartMonth)
	assert.Equal(t, 5, d.StartDay)
	assert.Equal(t, 6, d.EndMonth)
	assert.Equal(t, 2, d.EndDay)
	assert.Contains(t, d.Description, "https://example.com/festival")
}

func TestFromFestivalMissingDates(t *testing.T) {
	rec := FestivalRecord{Name: "No Dates", StartDate: "2025-03-05"}
	assert.Nil(t, FromFestival(rec, testLink))

	rec = FestivalRecord{Name: "No Dates", EndDate: "2025-06-02"}
	assert.Nil(t, FromFestival(rec, testLink))
}
