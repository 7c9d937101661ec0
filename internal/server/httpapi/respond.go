package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindEntityNotFound:         http.StatusNotFound,
	apperr.KindDuplicateValue:         http.StatusUnprocessableEntity,
	apperr.KindMembershipRequired:     http.StatusUnprocessableEntity,
	apperr.KindChatOwnerRemoval:       http.StatusUnprocessableEntity,
	apperr.KindInvalidCredentials:     http.StatusUnauthorized,
	apperr.KindAuthenticationRequired: http.StatusForbidden,
	apperr.KindInvalidSession:         http.StatusForbidden,
	apperr.KindExpiredSession:         http.StatusForbidden,
	apperr.KindAccessDenied:           http.StatusForbidden,
	apperr.KindInvalidRequest:         http.StatusUnprocessableEntity,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders policy errors verbatim and hides everything else
// behind a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		s.metrics.RecordPolicyError(e.Kind.Slug())
		writeJSON(w, StatusFor(e.Kind), errorResponse{Error: e.Kind.Slug(), Message: e.Message})
		return
	}

	s.logger.Error(r.Context(), "request failed",
		"error", err.Error(),
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestIDFrom(r.Context()),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal error"})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			if name, _, _ := strings.Cut(fld.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

func (s *Server) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.InvalidRequest(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field %s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return apperr.InvalidRequest(strings.Join(msgs, "; "))
}

// decodeJSON reads and validates a JSON body into dst.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.InvalidRequest("invalid JSON body: " + err.Error())
	}
	return s.validateStruct(dst)
}

const maxFormMemory = 1 << 20

// decodeForm fills dst's string fields from url-encoded or multipart form
// values named by their form tag, then validates it.
func (s *Server) decodeForm(r *http.Request, dst any) error {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return apperr.InvalidRequest("invalid form body: " + err.Error())
	}

	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name := rt.Field(i).Tag.Get("form")
		if name == "" || rv.Field(i).Kind() != reflect.String {
			continue
		}
		rv.Field(i).SetString(r.PostFormValue(name))
	}

	return s.validateStruct(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, apperr.InvalidRequest(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
