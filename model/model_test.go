package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"4:04", 244, false},
		{"10:36", 636, false},
		{"0:00", 0, false},
		{"1:02:03", 3723, false},
		{" 2:11 ", 131, false},
		{"4:60", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1:2:3:4", 0, true},
		{"-1:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDurations(t *testing.T) {
	assert.Equal(t, "4:04", FormatDuration(244))
	assert.Equal(t, "0:00", FormatDuration(-5))
	assert.Equal(t, "0m", FormatLongDuration(0))
	assert.Equal(t, "59m", FormatLongDuration(59*60+59))
	assert.Equal(t, "2h 18m", FormatLongDuration(2*3600+18*60))
}

func TestTrackValidate(t *testing.T) {
	valid := Track{ID: "1", Title: "Teardrop", Artist: "Massive Attack", Duration: "5:29"}
	assert.NoError(t, valid.Validate())

	missingArtist := valid
	missingArtist.Artist = " "
	err := missingArtist.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "artist", verr.Field)

	badDuration := valid
	badDuration.Duration = "five minutes"
	assert.Error(t, badDuration.Validate())
	assert.Equal(t, 0, badDuration.Seconds())
}

func TestPlaylistRecount(t *testing.T) {
	p := NewPlaylist("1", "Evening", "", mustTime(t))
	assert.Equal(t, "0m", p.Duration)
	assert.Equal(t, "16.10.2026", p.Created)
	assert.NotNil(t, p.TrackIDs)

	members := []Track{
		{ID: "a", Duration: "30:00"},
		{ID: "b", Duration: "45:00"},
	}
	p.TrackIDs = []string{"a", "b"}
	p.Recount(members)

	assert.Equal(t, 2, p.TrackCount)
	assert.Equal(t, "1h 15m", p.Duration)
	assert.True(t, p.HasTrack("b"))
	assert.False(t, p.HasTrack("c"))
}

func TestUserPublicHidesHash(t *testing.T) {
	u := User{ID: "u1", Email: "a@b.c", PasswordHash: "secret"}
	pub := u.Public()
	assert.Equal(t, "u1", pub.ID)
	assert.NotNil(t, pub.Preferences)
}

func mustTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-10-16T12:00:00Z")
	require.NoError(t, err)
	return ts
}
