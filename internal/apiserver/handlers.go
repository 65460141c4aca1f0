package apiserver

import (
	"net/http"

	"github.com/tsdbkit/fluxbatch/internal/pipeline"
	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

// statsResponse is the payload of the /stats endpoint.
type statsResponse struct {
	Pipeline pipeline.Stats             `json:"pipeline"`
	Sinks    map[string]batch.StatsData `json:"sinks"`
}

// HandleStats returns statistics about the pipeline and its sinks.
func HandleStats(w http.ResponseWriter, r *http.Request) {

	resp := statsResponse{
		Pipeline: pipe.Stats(),
		Sinks:    make(map[string]batch.StatsData),
	}

	for _, e := range pipe.Entries() {
		resp.Sinks[e.Name()] = e.Stats()
	}

	writeJSON(w, resp)
}
