package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Expenses
	r.HandleFunc("/api/expense", deps.ExpenseHandler.Submit).Methods("POST")
	r.HandleFunc("/api/expense/category", deps.ExpenseHandler.Categories).Methods("GET")
	r.HandleFunc("/api/expense/check", deps.ViewHandler.CheckDuplicate).Methods("POST")

	// View
	r.HandleFunc("/api/view", deps.ViewHandler.GetState).Methods("GET")
	r.HandleFunc("/api/view/day", deps.ViewHandler.SelectDay).Queries("date", "{date}").Methods("PUT")

	// Stats
	r.HandleFunc("/api/stats/daily", deps.StatsHandler.GetDaily).Methods("GET")
	r.HandleFunc("/api/stats/category", deps.StatsHandler.GetCategories).Methods("GET")
	r.HandleFunc("/api/stats/report", deps.StatsHandler.GetReport).Methods("GET")
}
