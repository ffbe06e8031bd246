package httpapi

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// maxRequestBody caps update bodies in both encodings. A field edit is a few
// hundred bytes at most.
const maxRequestBody = 4096

// isProtobuf reports whether the body is a binary google.protobuf.Struct.
func isProtobuf(r *http.Request) bool {
	ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	ct = strings.TrimSpace(ct)
	return ct == "application/x-protobuf" ||
		ct == "application/protobuf"
}

func readProto(r *http.Request, msg proto.Message) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return proto.Unmarshal(body, msg)
}

func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// updateRequestFromStruct reads the same keys as the JSON body. Numbers are
// accepted wherever a string is expected.
func updateRequestFromStruct(s *structpb.Struct) (types.UpdateRequest, error) {
	f := s.GetFields()
	var req types.UpdateRequest

	id, _, err := structText(f["id"])
	if err != nil {
		return req, fmt.Errorf("id: %w", err)
	}
	req.ID = types.FlexString(id)

	field, _, err := structText(f["field"])
	if err != nil {
		return req, fmt.Errorf("field: %w", err)
	}
	req.Field = field

	if v, ok, err := structText(f["value"]); err != nil {
		return req, fmt.Errorf("value: %w", err)
	} else if ok {
		fs := types.FlexString(v)
		req.Value = &fs
	}

	extraField, _, err := structText(f["extraField"])
	if err != nil {
		return req, fmt.Errorf("extraField: %w", err)
	}
	req.ExtraField = extraField

	if v, ok, err := structText(f["extraValue"]); err != nil {
		return req, fmt.Errorf("extraValue: %w", err)
	} else if ok {
		fs := types.FlexString(v)
		req.ExtraValue = &fs
	}
	return req, nil
}

// structText returns the text form of v and whether v was present and non-null.
func structText(v *structpb.Value) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "", false, nil
	case *structpb.Value_StringValue:
		return k.StringValue, true, nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return strconv.FormatInt(int64(n), 10), true, nil
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true, nil
	default:
		return "", false, fmt.Errorf("expected string or number")
	}
}

func messageStruct(fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		// Only plain strings are passed in.
		return &structpb.Struct{}
	}
	return s
}
