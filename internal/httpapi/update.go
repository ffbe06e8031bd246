package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/service"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/metrics"
)

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kind := types.EntityType(r.PathValue("entity"))
	asProto := isProtobuf(r)

	reply := func(status int, body map[string]any) {
		if asProto {
			writeProto(w, status, messageStruct(body))
			return
		}
		writeJSON(w, status, body)
	}

	if !kind.Valid() {
		reply(http.StatusNotFound, map[string]any{"message": "Unknown record type."})
		return
	}

	var req types.UpdateRequest
	if asProto {
		var msg structpb.Struct
		if err := readProto(r, &msg); err != nil {
			reply(http.StatusBadRequest, map[string]any{"message": "Malformed protobuf body."})
			return
		}
		var err error
		if req, err = updateRequestFromStruct(&msg); err != nil {
			reply(http.StatusBadRequest, map[string]any{"message": "Malformed request: " + err.Error()})
			return
		}
	} else {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			reply(http.StatusBadRequest, map[string]any{"message": "Malformed JSON body."})
			return
		}
	}

	cmd := service.UpdateCommand{
		Entity:     kind,
		RecordID:   string(req.ID),
		Field:      req.Field,
		ExtraField: req.ExtraField,
	}
	if req.Value != nil {
		cmd.Value = string(*req.Value)
	}
	if req.ExtraValue != nil {
		cmd.ExtraValue = string(*req.ExtraValue)
	}

	res, err := s.dispatcher.Apply(r.Context(), cmd)
	if err != nil {
		status, msg, outcome := classify(err)
		metrics.UpdatesApplied.WithLabelValues(string(kind), outcome).Inc()
		if status == http.StatusInternalServerError {
			s.logger.Printf("update %s id=%s field=%s rid=%s error: %v",
				kind, cmd.RecordID, cmd.Field, requestID(r.Context()), err)
		}
		reply(status, map[string]any{"message": msg})
		return
	}

	metrics.UpdatesApplied.WithLabelValues(string(kind), "ok").Inc()
	reply(http.StatusOK, map[string]any{
		"status":     "success",
		"message":    res.Message,
		"updateTime": res.UpdateTime,
	})
}

func (s *Server) handleStatuses(w http.ResponseWriter, r *http.Request) {
	s.writeStatuses(w, r, types.EntityType(r.PathValue("entity")))
}

// statusesFor serves the legacy per-kind situation endpoints.
func (s *Server) statusesFor(kind types.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeStatuses(w, r, kind)
	}
}

func (s *Server) writeStatuses(w http.ResponseWriter, r *http.Request, kind types.EntityType) {
	sts, err := s.queries.Statuses(r.Context(), kind)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sts)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.queries.Records(r.Context(), types.EntityType(r.PathValue("entity")))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, _ := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("%s %s rid=%s error: %v", r.Method, r.URL.Path, requestID(r.Context()), err)
	}
	writeError(w, status, msg)
}
