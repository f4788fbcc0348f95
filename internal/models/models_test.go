package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(in, in.AddDate(0, 0, 1)))
	assert.Equal(t, 30, DaysBetween(in, in.AddDate(0, 0, 30)))
	assert.Equal(t, 0, DaysBetween(in, in))
	assert.Equal(t, -2, DaysBetween(in, in.AddDate(0, 0, -2)))

	// clock parts are ignored
	late := time.Date(2024, 4, 1, 23, 30, 0, 0, time.UTC)
	early := time.Date(2024, 4, 2, 0, 10, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(late, early))
}

func TestDaysBetween_WideRange(t *testing.T) {
	from := time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 146097, DaysBetween(from, to))
	assert.Equal(t, -146097, DaysBetween(to, from))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	in := time.Date(2024, 3, 30, 0, 0, 0, 0, loc)
	out := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(in, out))
}

func TestBookingIntent_Metadata(t *testing.T) {
	intent := &BookingIntent{
		UserID:         7,
		ListingID:      1,
		CheckinDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		CheckoutDate:   time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		NumberOfPeople: 2,
		Amount:         12000,
	}

	md := intent.Metadata()
	require.Len(t, md, 6)
	assert.Equal(t, "1", md[MetaListingID])
	assert.Equal(t, "7", md[MetaUserID])
	assert.Equal(t, "2024-04-01", md[MetaCheckinDate])
	assert.Equal(t, "2024-04-03", md[MetaCheckoutDate])
	assert.Equal(t, "2", md[MetaNumberOfPeople])
	assert.Equal(t, "12000", md[MetaAmount])
	assert.Equal(t, 2, intent.Nights())
}

func TestPageRequest_Normalize(t *testing.T) {
	r := PageRequest{Page: -1, Size: 0}.Normalize(15)
	assert.Equal(t, 0, r.Page)
	assert.Equal(t, 15, r.Size)

	r = PageRequest{Page: 3, Size: 500}.Normalize(15)
	assert.Equal(t, 100, r.Size)
	assert.Equal(t, 300, r.Offset())
}

func TestPage_TotalPages(t *testing.T) {
	assert.Equal(t, 0, Page[int]{Size: 0, TotalItems: 10}.TotalPages())
	assert.Equal(t, 1, Page[int]{Size: 10, TotalItems: 10}.TotalPages())
	assert.Equal(t, 2, Page[int]{Size: 10, TotalItems: 11}.TotalPages())
}
