package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/config"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geo"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geo/geotest"
	"github.com/geoattend/attendance-backend-go/internal/pkg/jwt"
	"github.com/geoattend/attendance-backend-go/internal/pkg/metrics"
	"github.com/geoattend/attendance-backend-go/internal/repository/memory"
	attendanceService "github.com/geoattend/attendance-backend-go/internal/service/attendance"
	leaveService "github.com/geoattend/attendance-backend-go/internal/service/leave"
	reconcileService "github.com/geoattend/attendance-backend-go/internal/service/reconcile"
	reportService "github.com/geoattend/attendance-backend-go/internal/service/report"
	userService "github.com/geoattend/attendance-backend-go/internal/service/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var office = geo.Point{Latitude: 24.8600, Longitude: 67.0100}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testServer struct {
	handler http.Handler
	clock   *testClock
	jwt     jwt.Service
	admin   user.User
	worker  user.User
	other   user.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	// 09:05 at UTC+5 on 2024-05-10.
	clock := &testClock{now: time.Date(2024, 5, 10, 4, 5, 0, 0, time.UTC)}
	cal := calendar.New(5*time.Hour, calendar.TimeOfDay{Hour: 9}, clock.Now)
	m := metrics.New()

	userRepo := memory.NewUserRepository(store)
	attendanceRepo := memory.NewAttendanceRepository(store)
	leaveRepo := memory.NewLeaveRequestRepository(store)
	reportRepo := memory.NewReportRepository(store)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, leaveRepo, cal, attendanceService.Policy{
		Fence:           geo.Fence{Center: office, Radius: 200},
		MinFullDayHours: 4.5,
		StoreTimeout:    time.Second,
	}, m)
	reconcileSvc := reconcileService.NewReconcileService(userRepo, attendanceRepo, leaveRepo, cal, reconcileService.Options{
		TrackedRoles: []string{"employee", "hr"},
		Trigger:      calendar.TimeOfDay{Hour: 20, Minute: 10},
		StoreTimeout: time.Second,
	}, m)

	jwtService := jwt.NewJWTService("handler-test-secret", "1h")
	app := config.AppConfig{Env: "test", LogLevel: "error", Version: "test", AllowedOrigins: []string{"*"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(app, logger, jwtService, m,
		NewAttendanceHandler(attendanceSvc),
		NewLeaveHandler(leaveService.NewLeaveService(leaveRepo, cal, time.Second)),
		NewReportHandler(reportService.NewReportService(reportRepo, attendanceRepo, leaveRepo, cal, time.Second)),
		NewUserHandler(userService.NewUserService(userRepo, time.Second)),
		NewReconcileHandler(reconcileSvc),
	)

	return &testServer{
		handler: router,
		clock:   clock,
		jwt:     jwtService,
		admin:   store.PutUser(user.User{Name: "Admin", Email: "admin@example.com", Role: user.RoleAdmin, IsActive: true}),
		worker:  store.PutUser(user.User{Name: "Worker", Email: "worker@example.com", Role: user.RoleEmployee, IsActive: true}),
		other:   store.PutUser(user.User{Name: "Other", Email: "other@example.com", Role: user.RoleHR, IsActive: true}),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, as *user.User, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, _, err := s.jwt.GenerateAccessToken(as.ID, as.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func coords(p geo.Point) map[string]float64 {
	return map[string]float64{"latitude": p.Latitude, "longitude": p.Longitude}
}

type markData struct {
	Action     string `json:"action"`
	Attendance struct {
		ID                string  `json:"id"`
		Date              string  `json:"date"`
		Status            string  `json:"status"`
		IsLate            bool    `json:"is_late"`
		HalfDay           bool    `json:"half_day"`
		WorkDurationHours float64 `json:"work_duration_hours"`
	} `json:"attendance"`
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/v1/attendance/mark", nil, coords(office))
	assert.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_MarkAttendanceFlow(t *testing.T) {
	s := newTestServer(t)
	nearby := geotest.Offset(office, 50, 0)

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance/mark", &s.worker, coords(nearby))
	require.Equal(t, http.StatusCreated, code)
	var in markData
	require.NoError(t, json.Unmarshal(env.Data, &in))
	assert.Equal(t, "check_in", in.Action)
	assert.Equal(t, "2024-05-10", in.Attendance.Date)
	assert.True(t, in.Attendance.IsLate)

	// 13:05 local.
	s.clock.Set(time.Date(2024, 5, 10, 8, 5, 0, 0, time.UTC))
	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/mark", &s.worker, coords(nearby))
	require.Equal(t, http.StatusOK, code)
	var out markData
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "check_out", out.Action)
	assert.Equal(t, 4.0, out.Attendance.WorkDurationHours)
	assert.True(t, out.Attendance.HalfDay)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/mark", &s.worker, coords(nearby))
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)

	code, env = s.do(t, http.MethodGet, "/api/v1/reports/today", &s.worker, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"working_hours":4`)
}

func TestRouter_MarkAttendanceRejections(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance/mark", &s.worker, coords(geotest.Offset(office, 500, 90)))
	require.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, env.Error)
	assert.InDelta(t, 500, env.Error.Details["distance"], 1)
	assert.Equal(t, 200.0, env.Error.Details["allowedRadius"])

	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/mark", &s.worker, map[string]float64{"latitude": 24.86})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "longitude")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/mark", bytes.NewBufferString("{"))
	token, _, err := s.jwt.GenerateAccessToken(s.worker.ID, s.worker.Role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	code, env = s.do(t, http.MethodGet, "/api/v1/attendance/me", &s.worker, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total_count":0`)
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/v1/admin/attendance?date=2024-05-10", &s.worker, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/admin/attendance/reconcile", &s.other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/admin/users", &s.admin, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPatch, "/api/v1/admin/attendance/not-a-uuid", &s.admin, map[string]string{"status": "present"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_LeaveBlocksAttendanceAndReconcile(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/leave/apply", &s.other, map[string]string{
		"leave_type": "sick", "start_date": "2024-05-10", "end_date": "2024-05-11", "reason": "flu",
	})
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		ID        string `json:"id"`
		TotalDays int    `json:"total_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 2, created.TotalDays)

	code, _ = s.do(t, http.MethodPost, "/api/v1/admin/leave/"+created.ID+"/approve", &s.admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/admin/leave/"+created.ID+"/reject", &s.admin, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", &s.other, coords(office))
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/admin/attendance/reconcile?date=2024-05-10", &s.admin, nil)
	require.Equal(t, http.StatusOK, code)
	var result struct {
		Created    int      `json:"created"`
		CreatedIDs []string `json:"created_user_ids"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{s.worker.ID}, result.CreatedIDs)

	code, env = s.do(t, http.MethodGet, "/api/v1/admin/attendance?date=2024-05-10", &s.admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"absent":1`)

	code, _ = s.do(t, http.MethodPost, "/api/v1/admin/attendance/reconcile?date=2024-05-11", &s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
