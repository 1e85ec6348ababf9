package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdullah0300/fleet-management-sub001/api"
	"github.com/abdullah0300/fleet-management-sub001/internal/fanout"
	"github.com/abdullah0300/fleet-management-sub001/internal/service"
	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
	"github.com/abdullah0300/fleet-management-sub001/pkg/repository/mock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const testSecret = "testsecret"

// newLocationsRouter wires the ingest and read endpoints behind the real JWT
// middleware, over mocks.
func newLocationsRouter(t *testing.T, m *mock.Mocks) (*mux.Router, *fanout.Bus) {
	t.Helper()
	bus := fanout.NewBus(16)
	svc := service.NewLocationService(m.Vehicles, nil, bus, nil, nil, nil)
	h := api.NewLocationsHandler(svc, m.History, nil)

	r := mux.NewRouter()
	r.Use(api.JWTAuthMiddlewareWithSecret(testSecret))
	r.HandleFunc("/v1/locations", h.Ingest).Methods("POST")
	r.HandleFunc("/v1/vehicles/{id}/location", h.GetVehicleLocation).Methods("GET")
	r.HandleFunc("/v1/vehicles/{id}/history", h.ListHistory).Methods("GET")
	return r, bus
}

func bearerToken(t *testing.T, driverID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"driver_id": driverID,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + s
}

func TestIngestEndpoint(t *testing.T) {
	driverID := uuid.NewString()
	otherDriver := uuid.NewString()
	vehicleID := uuid.NewString()

	tests := []struct {
		name       string
		auth       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "no token",
			auth:       "",
			body:       `{"lat": -1.29, "lng": 36.82}`,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Unauthorized",
		},
		{
			name:       "missing coordinates",
			body:       `{"lat": -1.29}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing latitude/longitude",
		},
		{
			name:       "no vehicle assigned",
			auth:       "other",
			body:       `{"lat": -1.29, "lng": 36.82}`,
			wantStatus: http.StatusNotFound,
			wantError:  "No vehicle assigned to this driver",
		},
		{
			name:       "success",
			body:       `{"lat": -1.29, "lng": 36.82, "speed": 12.5}`,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.NewMocks()
			m.Vehicles.Stored = append(m.Vehicles.Stored, models.Vehicle{
				ID: vehicleID, Registration: "KAA 200Y", CurrentDriverID: &driverID,
			})
			router, _ := newLocationsRouter(t, m)

			req := httptest.NewRequest(http.MethodPost, "/v1/locations", bytes.NewReader([]byte(tt.body)))
			switch tt.auth {
			case "":
				if tt.name != "no token" {
					req.Header.Set("Authorization", bearerToken(t, driverID))
				}
			case "other":
				req.Header.Set("Authorization", bearerToken(t, otherDriver))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", res.StatusCode, tt.wantStatus, data)
			}

			var body map[string]any
			if err := json.Unmarshal(data, &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if tt.wantError != "" {
				if body["error"] != tt.wantError {
					t.Fatalf("error = %v, want %q", body["error"], tt.wantError)
				}
				return
			}
			if body["success"] != true || body["vehicle_id"] != vehicleID {
				t.Fatalf("success body wrong: %s", data)
			}
		})
	}
}

func TestGetVehicleLocationEndpoint(t *testing.T) {
	driverID := uuid.NewString()
	m := mock.NewMocks()
	vehicle := models.Vehicle{ID: uuid.NewString(), Registration: "KAB 300Z", CurrentDriverID: &driverID}
	m.Vehicles.Stored = append(m.Vehicles.Stored, vehicle)
	router, _ := newLocationsRouter(t, m)

	get := func(path string) (*http.Response, []byte) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearerToken(t, driverID))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		res := w.Result()
		data, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return res, data
	}

	// no snapshot yet
	res, _ := get("/v1/vehicles/" + vehicle.ID + "/location")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before first sample, got %d", res.StatusCode)
	}

	// ingest one sample, then read it back
	req := httptest.NewRequest(http.MethodPost, "/v1/locations", bytes.NewReader([]byte(`{"lat": -1.29, "lng": 36.82}`)))
	req.Header.Set("Authorization", bearerToken(t, driverID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest failed: %d %s", w.Code, w.Body.String())
	}

	res, data := get("/v1/vehicles/" + vehicle.ID + "/location")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("read back failed: %d %s", res.StatusCode, data)
	}
	var snap models.LocationSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Lat != -1.29 || snap.Lng != 36.82 {
		t.Fatalf("snapshot wrong: %+v", snap)
	}
}

func TestListHistoryEndpoint(t *testing.T) {
	driverID := uuid.NewString()
	m := mock.NewMocks()
	vehicleID := uuid.NewString()
	m.History.Stored = []models.LocationHistoryEntry{
		{VehicleID: vehicleID, DriverID: driverID, Lat: 1, Lng: 2, Timestamp: 100},
		{VehicleID: vehicleID, DriverID: driverID, Lat: 3, Lng: 4, Timestamp: 200},
	}
	router, _ := newLocationsRouter(t, m)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/"+vehicleID+"/history?since=150", nil)
	req.Header.Set("Authorization", bearerToken(t, driverID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("history failed: %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Items []models.LocationHistoryEntry `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Timestamp != 200 {
		t.Fatalf("since filter wrong: %+v", body.Items)
	}

	// malformed since
	req = httptest.NewRequest(http.MethodGet, "/v1/vehicles/"+vehicleID+"/history?since=-1", nil)
	req.Header.Set("Authorization", bearerToken(t, driverID))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad since, got %d", w.Code)
	}
}

func TestLiveEndpointUsesHub(t *testing.T) {
	bus := fanout.NewBus(16)
	hub := fanout.NewHub(bus)
	detach := hub.Attach()
	defer detach()

	m := mock.NewMocks()
	svc := service.NewLocationService(m.Vehicles, nil, bus, nil, nil, nil)
	h := api.NewLocationsHandler(svc, m.History, hub)

	lat, lng := -1.29, 36.82
	if err := bus.Emit(context.Background(), fanout.Event{VehicleID: "v1", Lat: &lat, Lng: &lng, Timestamp: 5}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, ok := hub.Snapshot("v1"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("hub never applied the event")
		}
		time.Sleep(10 * time.Millisecond)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/locations", nil)
	w := httptest.NewRecorder()
	h.Live(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("live failed: %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Vehicles map[string]models.LocationSnapshot `json:"vehicles"`
		Stale    bool                               `json:"stale"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Vehicles) != 1 || body.Vehicles["v1"].Lat != lat {
		t.Fatalf("live view wrong: %+v", body)
	}
}
