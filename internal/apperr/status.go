package apperr

import "net/http"

// StatusTable maps error kinds to HTTP status codes for one call site.
// Kinds missing from the table resolve to Fallback.
type StatusTable struct {
	Codes    map[Kind]int
	Fallback int
}

func (t StatusTable) Status(err error) int {
	if code, ok := t.Codes[KindOf(err)]; ok {
		return code
	}
	if t.Fallback == 0 {
		return http.StatusInternalServerError
	}
	return t.Fallback
}

// WeatherStatus is the mapping used by the direct lookup endpoint.
var WeatherStatus = StatusTable{
	Codes: map[Kind]int{
		KindInvalidInput:       http.StatusNotFound,
		KindNotFoundOrProvider: http.StatusNotFound,
		KindConfig:             http.StatusInternalServerError,
		KindNetwork:            http.StatusInternalServerError,
	},
	Fallback: http.StatusInternalServerError,
}

// PipelineStatus is the mapping used by the audio endpoint.
var PipelineStatus = StatusTable{
	Codes: map[Kind]int{
		KindInvalidInput: http.StatusBadRequest,
	},
	Fallback: http.StatusInternalServerError,
}
