package api

import (
	"net/http"

	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/records"
)

// addRecord handles POST /api/v1/records
func (s *Server) addRecord(w http.ResponseWriter, r *http.Request) {
	var req AddRecordRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}
	recordType, err := records.ParseRecordType(req.RecordType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	id, err := s.svc.AddRecord(r.Context(), callerFrom(r.Context()),
		ledger.Address(req.Patient), ledger.Address(req.Provider), recordType, req.DataHash)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteCreated(w, RecordIDResponse{ID: id})
}

// getRecord handles GET /api/v1/records/{id}
func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
	if !ok {
		return
	}

	record, err := s.svc.GetRecord(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, record)
}

// updateRecord handles PUT /api/v1/records/{id}
func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
	if !ok {
		return
	}
	var req UpdateRecordRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	version, err := s.svc.UpdateRecord(r.Context(), callerFrom(r.Context()), id, req.DataHash)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, VersionResponse{RecordID: id, Version: version})
}

// rollbackRecord handles POST /api/v1/records/{id}/rollback
func (s *Server) rollbackRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
	if !ok {
		return
	}
	var req RollbackRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	version, err := s.svc.RollbackRecord(r.Context(), callerFrom(r.Context()), id, req.Version)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.WithField("record_id", id).WithField("target_version", req.Version).Warn("record rolled back")
	httputil.WriteSuccess(w, VersionResponse{RecordID: id, Version: version})
}

// getRecordHistory handles GET /api/v1/records/{id}/history
func (s *Server) getRecordHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
	if !ok {
		return
	}

	history, err := s.svc.GetRecordHistory(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, history)
}

// getLatestVersion handles GET /api/v1/records/{id}/versions/latest
func (s *Server) getLatestVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
	if !ok {
		return
	}

	version, err := s.svc.GetLatestRecordVersion(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, VersionResponse{RecordID: id, Version: version})
}

// getRecordVersion handles GET /api/v1/records/{id}/versions/{version}
func (s *Server) getRecordVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
	if !ok {
		return
	}
	version, err := httputil.ParsePathUint32(r, "version")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	entry, err := s.svc.GetRecordVersion(r.Context(), id, version)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, entry)
}

// compareVersions handles GET /api/v1/records/{id}/compare?from=&to=
func (s *Server) compareVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUint64OrError(w, r, "id")
	if !ok {
		return
	}
	from, err := httputil.ParseQueryUint32(r, "from")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	to, err := httputil.ParseQueryUint32(r, "to")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	cmp, err := s.svc.CompareRecordVersions(r.Context(), id, from, to)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, cmp)
}

// getPatientRecords handles GET /api/v1/patients/{address}/records
func (s *Server) getPatientRecords(w http.ResponseWriter, r *http.Request) {
	address, ok := httputil.ParsePathStringOrError(w, r, "address")
	if !ok {
		return
	}

	ids, err := s.svc.GetPatientRecords(r.Context(), ledger.Address(address))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, PatientRecordsResponse{Patient: ledger.Address(address), RecordIDs: ids})
}
