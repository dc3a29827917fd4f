package handlers

import (
	"net/http"

	"github.com/sdko-org/areacheck/internal/codec"
	"github.com/sdko-org/areacheck/internal/geometry"
)

func writeResponse(w http.ResponseWriter, resp *Response) {
	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, jsonResponse(http.StatusOK, codec.Obj(codec.M("ok", codec.Bool(true)))))
}

// RegionHandler publishes the active region as shapes and constraint
// formulas.
func RegionHandler(region geometry.Region) http.HandlerFunc {
	resp := jsonResponse(http.StatusOK, regionPayload(region))
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	}
}
