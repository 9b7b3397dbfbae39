package transfer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"MusicFlow/model"
)

var csvColumns = []string{"id", "title", "artist", "album", "genre", "year", "duration", "bitrate", "liked"}

// ExportTracks writes tracks to w in the given format.
func ExportTracks(w io.Writer, format string, tracks []model.Track) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, tracks)
	case FormatCSV:
		return writeTracksCSV(w, tracks)
	case FormatM3U:
		return writeM3U(w, tracks)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTracksCSV quotes every field. encoding/csv only quotes when it has to.
func writeTracksCSV(w io.Writer, tracks []model.Track) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(csvColumns, ",") + "\n")
	for _, t := range tracks {
		fields := []string{
			t.ID, t.Title, t.Artist, t.Album, t.Genre,
			strconv.Itoa(t.Year), t.Duration, t.Bitrate, strconv.FormatBool(t.Liked),
		}
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quoteCSV(f))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// AudioURL is the API path that serves a track's audio file.
func AudioURL(trackID string) string {
	return "/api/tracks/" + trackID + "/audio"
}

func writeM3U(w io.Writer, tracks []model.Track) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("#EXTM3U\n")
	for _, t := range tracks {
		fmt.Fprintf(bw, "#EXTINF:%d,%s - %s\n", t.Seconds(), t.Artist, t.Title)
		bw.WriteString(AudioURL(t.ID) + "\n")
	}
	return bw.Flush()
}
