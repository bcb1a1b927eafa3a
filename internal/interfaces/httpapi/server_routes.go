package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerRecordRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/records", handler.ListRecords)
	mux.HandleFunc("GET /v1/records/{playerID}", handler.GetRecord)
	mux.HandleFunc("GET /v1/status", handler.GetStatus)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/cycles", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.TriggerCycle)))
	mux.Handle("PUT /v1/internal/players/{playerID}/team", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.UpdatePlayerTeam)))
}
