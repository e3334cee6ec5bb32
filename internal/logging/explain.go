package logging

import (
	"encoding/json"
	"errors"
	"io/fs"
	"strconv"

	"github.com/FranksOps/rankrocket/internal/config"
	"github.com/FranksOps/rankrocket/internal/gmb"
)

// Explain returns a plain-language hint for err, shown next to the error
// when a command fails.
func Explain(err error) string {
	var (
		missing *config.MissingFieldsError
		numErr  *strconv.NumError
		syntax  *json.SyntaxError
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missing), errors.Is(err, config.ErrMissingCredential):
		return "A required field may be missing. Double-check your configuration values."
	case errors.Is(err, fs.ErrNotExist):
		return "File not found. Make sure the file exists and the path is correct."
	case errors.Is(err, gmb.ErrNoServices),
		errors.As(err, &numErr),
		errors.As(err, &syntax),
		errors.As(err, &typeErr):
		return "Invalid input. Ensure that numbers or formats are entered correctly."
	default:
		return "An unexpected error occurred. Try again or check the log for details."
	}
}
