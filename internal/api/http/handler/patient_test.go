package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medchart/internal/patient"
	patientsvc "github.com/Alijeyrad/medchart/internal/service/patient"
	"github.com/Alijeyrad/medchart/internal/test"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

type fakePatients struct {
	nextID int64
}

func (f *fakePatients) Create(_ context.Context, req patientsvc.CreatePatientRequest) (*patient.Patient, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		return nil, patientsvc.ErrInvalidDOB
	}
	f.nextID++
	return &patient.Patient{ID: f.nextID, FirstName: req.FirstName, LastName: req.LastName, DOB: dob}, nil
}

func mountPatients(env *testEnv) {
	ph := NewPatientHandler(&fakePatients{nextID: 100}, env.reg)
	env.app.Post("/patients", ph.Create)
}

func TestCreatePatientOpensTab(t *testing.T) {
	env := newTestEnv(t)
	mountPatients(env)

	req := test.RandomPatientRequest()
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	status, body := env.do(t, http.MethodPost, "/patients", string(raw))
	require.Equal(t, http.StatusCreated, status)

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(101), data["patient"].(map[string]any)["id"])

	state := data["workspace"].(map[string]any)
	assert.Equal(t, float64(101), state["active"])
	tab := state["tabs"].([]any)[0].(map[string]any)
	assert.Equal(t, req.FirstName, tab["first_name"])
	assert.Equal(t, req.DOB, tab["dob"])

	env.reg.Wait()
	status, _ = env.do(t, http.MethodGet, "/workspace/tabs/101/chart", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestCreatePatientValidation(t *testing.T) {
	env := newTestEnv(t)
	mountPatients(env)

	status, body := env.do(t, http.MethodPost, "/patients", `{"first_name":"Ada"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "last_name")

	status, _ = env.do(t, http.MethodGet, "/workspace", "")
	require.Equal(t, http.StatusOK, status)
}

func TestCreatePatientBadBody(t *testing.T) {
	env := newTestEnv(t)
	mountPatients(env)

	resp, err := env.app.Test(newJSONRequest(http.MethodPost, "/patients", "{"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func newJSONRequest(method, path, body string) *http.Request {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", clinician)
	return req
}
