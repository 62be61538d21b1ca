package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloodlink/internal/config"
	"bloodlink/internal/infrastructure/database/memory"
	"bloodlink/internal/infrastructure/revocation"
	"bloodlink/internal/middleware"
	"bloodlink/internal/usecase/account"
	"bloodlink/internal/usecase/hospital"
	"bloodlink/internal/usecase/request"
	"bloodlink/internal/usecase/search"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type failingHealth struct{}

func (failingHealth) Health(context.Context) error { return errors.New("connection refused") }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type RouterSuite struct {
	suite.Suite
	cfg      *config.Config
	services Services
	router   *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.cfg = &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			MaxAge:         time.Hour,
		},
	}

	accounts := memory.NewAccountRepository()
	requests := memory.NewRequestRepository()
	tokens := utils.NewTokenManager("router-secret", "bloodlink", time.Hour)
	requestService := request.NewService(requests, accounts, nil, nil, request.Options{})

	s.services = Services{
		Accounts:  account.NewService(accounts, tokens, revocation.NewMemoryList(), nil),
		Search:    search.NewService(accounts, nil, 0, 0),
		Requests:  requestService,
		Hospitals: hospital.NewService(accounts, requests, requestService),
	}
	s.router = SetupRoutes(s.cfg, s.services, Options{})
}

func (s *RouterSuite) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *RouterSuite) register(email, role, bloodType string) string {
	return s.registerIn(email, role, bloodType, "Pune")
}

func (s *RouterSuite) registerIn(email, role, bloodType, city string) string {
	body := gin.H{
		"name":     "Arjun Mehta",
		"email":    email,
		"password": "secret1",
		"phone":    "9876543210",
		"role":     role,
		"address":  "12 MG Road",
		"city":     city,
		"state":    "Maharashtra",
		"pincode":  "411001",
	}
	if bloodType != "" {
		body["blood_type"] = bloodType
	}

	w, env := s.do(http.MethodPost, "/api/v1/auth/register", "", body)
	s.Require().Equal(http.StatusCreated, w.Code, env.Message)

	var auth struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &auth))
	s.Require().NotEmpty(auth.Token)
	return auth.Token
}

func (s *RouterSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))

	var status struct {
		Status string `json:"status"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &status))
	s.Equal("healthy", status.Status)

	tests := []struct {
		name    string
		opts    Options
		message string
	}{
		{"database down", Options{Health: failingHealth{}}, "Database connection failed"},
		{"redis down", Options{Cache: failingHealth{}}, "Redis connection failed"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			unhealthy := SetupRoutes(s.cfg, s.services, tt.opts)
			rec := httptest.NewRecorder()
			unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			s.Equal(http.StatusServiceUnavailable, rec.Code)

			var body struct {
				Message string `json:"message"`
			}
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
			s.Equal(tt.message, body.Message)
		})
	}
}

func (s *RouterSuite) TestRegisterLoginAndMe() {
	s.register("arjun@example.com", "donor", "B+")

	w, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ARJUN@example.com",
		"password": "secret1",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var auth struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &auth))

	w, env = s.do(http.MethodGet, "/api/v1/auth/me", auth.Token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var profile struct {
		Email     string `json:"email"`
		BloodType string `json:"blood_type"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.Equal("arjun@example.com", profile.Email)
	s.Equal("B+", profile.BloodType)

	w, env = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "arjun@example.com",
		"password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid credentials", env.Message)
}

func (s *RouterSuite) TestDuplicateRegistration() {
	s.register("dup@example.com", "patient", "")

	w, env := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Arjun Mehta",
		"email":    "dup@example.com",
		"password": "secret1",
		"phone":    "9876543210",
		"role":     "patient",
		"address":  "12 MG Road",
		"city":     "Pune",
		"state":    "Maharashtra",
		"pincode":  "411001",
	})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("User already exists with this email", env.Message)
}

func (s *RouterSuite) TestAuthHeaderRequired() {
	w, env := s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Authorization header required", env.Message)

	w, env = s.do(http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid or expired token", env.Message)
}

func (s *RouterSuite) TestLogoutRevokesToken() {
	token := s.register("leaving@example.com", "patient", "")

	w, _ := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w, env := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Token has been revoked", env.Message)
}

func (s *RouterSuite) TestRoleGates() {
	patient := s.register("patient@example.com", "patient", "")
	donor := s.register("donor@example.com", "donor", "O-")

	w, env := s.do(http.MethodPut, "/api/v1/donors/availability", patient, gin.H{"available": false})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("Access denied for role patient", env.Message)

	w, _ = s.do(http.MethodPut, "/api/v1/donors/availability", donor, gin.H{"available": false})
	s.Equal(http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/hospitals/dashboard", donor, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("Access denied for role donor", env.Message)
}

func (s *RouterSuite) TestRequestLifecycle() {
	patient := s.register("family@example.com", "patient", "")
	donor := s.register("giver@example.com", "donor", "O+")

	w, env := s.do(http.MethodPost, "/api/v1/requests", patient, gin.H{
		"blood_type":     "O+",
		"units_needed":   2,
		"urgency":        "urgent",
		"patient_name":   "Meera",
		"contact_number": "9876543210",
	})
	s.Require().Equal(http.StatusCreated, w.Code, env.Message)
	var created struct {
		ID       uuid.UUID `json:"id"`
		Location struct {
			City string `json:"city"`
		} `json:"location"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal("Pune", created.Location.City)

	w, env = s.do(http.MethodGet, "/api/v1/donors/relevant-requests", donor, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NotNil(env.Count)
	s.Equal(1, *env.Count)

	w, _ = s.do(http.MethodPost, "/api/v1/requests/"+created.ID.String()+"/responses", donor, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPut, "/api/v1/requests/"+created.ID.String()+"/status", donor, gin.H{"status": "fulfilled"})
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPut, "/api/v1/requests/"+created.ID.String()+"/status", patient, gin.H{"status": "fulfilled"})
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/requests/"+created.ID.String()+"/responses", donor, nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *RouterSuite) TestRequestNotFoundAndBadID() {
	token := s.register("someone@example.com", "patient", "")

	w, env := s.do(http.MethodGet, "/api/v1/requests/not-a-uuid", token, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid request ID", env.Message)

	w, env = s.do(http.MethodGet, "/api/v1/requests/"+uuid.NewString(), token, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Blood request not found", env.Message)
}

func (s *RouterSuite) TestCreateRequestValidation() {
	token := s.register("invalid@example.com", "patient", "")

	w, env := s.do(http.MethodPost, "/api/v1/requests", token, gin.H{
		"blood_type":     "Q+",
		"patient_name":   "Meera",
		"contact_number": "9876543210",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(env.Success)
}

func (s *RouterSuite) TestPunctuatedTextRoundTrips() {
	donor := s.registerIn("idaho@example.com", "donor", "A+", "Coeur d'Alene")

	w, env := s.do(http.MethodGet, "/api/v1/donors/search?city=Coeur+d%27Alene", donor, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NotNil(env.Count)
	s.Equal(1, *env.Count)

	var donors []struct {
		Location struct {
			City string `json:"city"`
		} `json:"location"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &donors))
	s.Require().Len(donors, 1)
	s.Equal("Coeur d'Alene", donors[0].Location.City)

	w, env = s.do(http.MethodPost, "/api/v1/requests", donor, gin.H{
		"blood_type":     "A+",
		"patient_name":   "O'Brien",
		"contact_number": "9876543210",
	})
	s.Require().Equal(http.StatusCreated, w.Code, env.Message)
	var created struct {
		PatientName string `json:"patient_name"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal("O'Brien", created.PatientName)
}

func (s *RouterSuite) TestRecordDonationUsesPut() {
	donor := s.register("regular@example.com", "donor", "AB+")

	w, _ := s.do(http.MethodPost, "/api/v1/donors/donation", donor, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, env := s.do(http.MethodPut, "/api/v1/donors/donation", donor, nil)
	s.Require().Equal(http.StatusOK, w.Code, env.Message)

	w, env = s.do(http.MethodGet, "/api/v1/donors/my-donations", donor, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats struct {
		Stats struct {
			CanDonate         bool `json:"can_donate"`
			DaysUntilEligible int  `json:"days_until_eligible"`
		} `json:"stats"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &stats))
	s.False(stats.Stats.CanDonate)
	s.Equal(90, stats.Stats.DaysUntilEligible)
}
