package internal

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// TimeTrack logs the elapsed time of the named step at debug level.
//
//	defer TimeTrack(log, "presign")(time.Now())
func TimeTrack(log zerolog.Logger, name string) func(time.Time) {
	return func(start time.Time) {
		log.Debug().Str("step", name).Dur("elapsed", time.Since(start)).Msg("timing")
	}
}

// ContentType reads up to the first 512 bytes and sniffs the mime type.
func ContentType(r io.Reader) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
