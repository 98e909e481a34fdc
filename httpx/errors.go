package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/survey-builder/log"
	"github.com/mbolis/survey-builder/model"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// Will log a validation failure at debug level, and send a JSON response
// with status 422 listing every violation
func LogInvalid(w http.ResponseWriter, r *http.Request, code string, err error) {
	msgs := model.Messages(err)
	log.Debugf("%s: %d validation errors", code, len(msgs))
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, map[string]any{
		"errors": msgs,
	})
}
