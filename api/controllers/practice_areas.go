package controllers

import (
	"net/http"

	"github.com/cfl-legal/chambers-backend/api/responses"
	"github.com/cfl-legal/chambers-backend/api/validators"
	"github.com/cfl-legal/chambers-backend/internal/practiceareas"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
)

// ListPracticeAreas returns every practice area.
func ListPracticeAreas(svc practiceareas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetPracticeArea returns one practice area by id.
func GetPracticeArea(svc practiceareas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "practiceAreaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		area, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, area)
	}
}

// CreatePracticeArea adds a practice area. Admin only.
func CreatePracticeArea(svc practiceareas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req practiceareas.CreatePracticeAreaInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		area, err := svc.Create(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, area)
	}
}

// UpdatePracticeArea mutates a practice area. Admin only.
func UpdatePracticeArea(svc practiceareas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "practiceAreaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req practiceareas.UpdatePracticeAreaInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		area, err := svc.Update(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, area)
	}
}

// DeletePracticeArea removes an unreferenced practice area. Admin only.
func DeletePracticeArea(svc practiceareas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "practiceAreaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
