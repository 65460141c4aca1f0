package apiserver

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON marshals v into the http stream and calls log.Fatal() on error.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Fatalf("error writing to http stream: %s", err)
	}
}
