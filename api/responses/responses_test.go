package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/types"
)

func TestWriteSuccessWrapsDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Warning != "" {
		t.Fatalf("unexpected warning %q", envelope.Warning)
	}
}

func TestWriteSuccessWarningCarriesWarning(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessWarning(rec, map[string]string{"message": "deleted"}, "remote object not removed")

	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Warning != "remote object not removed" {
		t.Fatalf("expected warning, got %q", envelope.Warning)
	}
}

func TestWriteErrorMapsCodeToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "category not found"), http.StatusNotFound, string(pkgerrors.CodeNotFound)},
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive"), http.StatusBadRequest, string(pkgerrors.CodeValidation)},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, string(pkgerrors.CodeInternal)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var envelope types.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if envelope.Error.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, envelope.Error.Code)
			}
		})
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "dsn=postgres://secret"))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Message == "dsn=postgres://secret" {
		t.Fatal("internal message leaked to the client")
	}
}
