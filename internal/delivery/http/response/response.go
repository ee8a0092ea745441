package response

import (
	"encoding/json"
	"net/http"
)

// Pagination describes the window of a paginated listing
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": message}
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, errorBody{Error: message})
}

// Success writes {"success": true, "data": data} with 200
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes {"success": true, "data": data} with 201
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// OK writes a bare {"success": true}
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, envelope{Success: true})
}

// Paginated writes a page of data with its pagination window
func Paginated(w http.ResponseWriter, data interface{}, total, limit, offset int) {
	JSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Total: total, Limit: limit, Offset: offset},
	})
}
