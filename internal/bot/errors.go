package bot

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/pkg/retrylimit"
)

// restError exposes the HTTP status of a discordgo REST failure to retrylimit.
type restError struct {
	*discordgo.RESTError
}

func (e restError) StatusCode() int { return e.Response.StatusCode }

func (e restError) Unwrap() error { return e.RESTError }

// Retryable classifies a platform error for retrylimit: rate limits and server
// errors keep their status for a retry, everything else is fatal.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	var re *discordgo.RESTError
	if errors.As(err, &re) && re.Response != nil {
		code := re.Response.StatusCode
		if code == http.StatusTooManyRequests || code >= 500 {
			return restError{re}
		}
	}
	return retrylimit.Fatal(err)
}
