package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/growthlab/sitescope/internal/analysis"
	"github.com/growthlab/sitescope/internal/intake"
	"github.com/growthlab/sitescope/internal/models"
	"github.com/growthlab/sitescope/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type submitRequest struct {
	Website string `json:"website"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type analyzeResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	OverallScore int    `json:"overall_score,omitempty"`
}

type recordResponse struct {
	RequestID    string          `json:"request_id"`
	Website      string          `json:"website"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Status       models.Status   `json:"status"`
	AnalysisData json.RawMessage `json:"analysis_data,omitempty"`
	ReportData   json.RawMessage `json:"report_data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func toRecordResponse(record *models.AnalysisRecord) recordResponse {
	return recordResponse{
		RequestID:    record.RequestID,
		Website:      record.Website,
		Name:         record.Name,
		Email:        record.Email,
		Status:       record.Status,
		AnalysisData: json.RawMessage(record.AnalysisData),
		ReportData:   json.RawMessage(record.ReportData),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
		CompletedAt:  record.CompletedAt,
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(service *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(service.GetMetrics()))
	}
}

// submitHandler accepts a lead form submission and creates a pending
// analysis request.
func submitHandler(service *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
			return
		}

		record, err := service.Submit(req.Website, req.Name, req.Email)
		if err != nil {
			var verr *intake.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, verr)
				return
			}
			logrus.Errorf("Failed to create request: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create request"})
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(record))
	}
}

// analyzeHandler runs the pipeline synchronously for an approved request.
// A panic anywhere in the run is reported as an overall failure while the
// request's persisted status is left at its prior state.
func analyzeHandler(service *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logrus.Errorf("Analysis run panicked: %v", rec)
				writeJSON(w, http.StatusInternalServerError, analyzeResponse{
					Success: false,
					Error:   "internal error during analysis",
				})
			}
		}()

		var req models.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, analyzeResponse{Success: false, Error: "invalid JSON payload"})
			return
		}

		composite, err := service.Run(r.Context(), req)
		if err != nil {
			status := http.StatusInternalServerError
			var verr *intake.ValidationError
			var terr *models.ErrInvalidTransition
			switch {
			case errors.As(err, &verr):
				status = http.StatusBadRequest
			case errors.As(err, &terr):
				status = http.StatusConflict
			case errors.Is(err, gorm.ErrRecordNotFound):
				status = http.StatusNotFound
			}
			writeJSON(w, status, analyzeResponse{Success: false, Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, analyzeResponse{Success: true, OverallScore: composite.OverallScore})
	}
}

// operatorActionHandler wraps the approve/reject service calls.
func operatorActionHandler(action func(string) (*models.AnalysisRecord, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := mux.Vars(r)["id"]

		record, err := action(requestID)
		if err != nil {
			var terr *models.ErrInvalidTransition
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
			case errors.As(err, &terr):
				writeJSON(w, http.StatusConflict, map[string]string{"error": terr.Error()})
			default:
				logrus.Errorf("Operator action failed for %s: %v", requestID, err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "operation failed"})
			}
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(record))
	}
}

func getRequestHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := mux.Vars(r)["id"]

		record, err := st.GetRequest(requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "request not found"})
				return
			}
			logrus.Errorf("Failed to load request %s: %v", requestID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load request"})
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(record))
	}
}

func listRequestsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status models.Status
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := models.ParseStatus(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			status = parsed
		}

		records, err := st.ListRequests(status)
		if err != nil {
			logrus.Errorf("Failed to list requests: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list requests"})
			return
		}

		responses := make([]recordResponse, 0, len(records))
		for i := range records {
			responses = append(responses, toRecordResponse(&records[i]))
		}

		writeJSON(w, http.StatusOK, responses)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
