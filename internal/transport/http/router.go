package http

import (
	"github.com/gorilla/mux"
)

// NewRouter configures HTTP routes and embedded UI serving.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", handler.Health).Methods("GET")
	r.HandleFunc("/api/status", handler.Status).Methods("GET")
	r.HandleFunc("/api/folder", handler.SelectFolder).Methods("POST")
	r.HandleFunc("/api/convert", handler.StartConversion).Methods("POST")
	r.HandleFunc("/api/events", handler.Events).Methods("GET")
	r.HandleFunc("/api/open", handler.OpenOutput).Methods("POST")
	r.HandleFunc("/api/system", handler.System).Methods("GET")
	r.HandleFunc("/converted/{name}", handler.ServeConverted).Methods("GET")
	r.PathPrefix("/").Handler(UIHandler())
	return r
}
