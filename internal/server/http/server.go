// Package http exposes the public REST API: authentication, student records
// CRUD, background imports and deletes, and job status polling.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/dmitrijs2005/gradekeeper/internal/server/workers"
)

const shutdownTimeout = 5 * time.Second

// Auth is the slice of the auth service the transport needs.
type Auth interface {
	Register(ctx context.Context, username, password string, readonly bool) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	ValidateAccess(ctx context.Context, accessToken string) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	RequireWrite(user *models.User) error
}

// Students is the slice of the student service the transport needs.
type Students interface {
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context) ([]*models.Student, error)
	Update(ctx context.Context, id int64, patch *models.StudentPatch) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) (int64, error)
	ImportStudents(ctx context.Context, records []*models.Student) (int, error)
}

// Jobs submits background work and reports its status.
type Jobs interface {
	Submit(name string, fn workers.JobFunc) (string, error)
	Status(id string) (*workers.Job, error)
}

// Fetcher resolves an import source (local path or s3:// URI) to a stream.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (io.ReadCloser, error)
}

// Server is the HTTP front of the application.
type Server struct {
	addr     string
	auth     Auth
	students Students
	jobs     Jobs
	fetcher  Fetcher
	logger   logging.Logger
}

func NewServer(cfg *config.Config, auth Auth, students Students, jobs Jobs, fetcher Fetcher, l logging.Logger) *Server {
	return &Server{
		addr:     cfg.EndpointAddrHTTP,
		auth:     auth,
		students: students,
		jobs:     jobs,
		fetcher:  fetcher,
		logger:   l.With("module", "http"),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
		authGroup.POST("/logout", s.authenticate(), s.handleLogout)
	}

	students := r.Group("/students", s.authenticate())
	{
		students.GET("", s.handleListStudents)
		students.GET("/:id", s.handleGetStudent)
		students.POST("", s.requireWrite(), s.handleCreateStudent)
		students.PUT("/:id", s.requireWrite(), s.handleUpdateStudent)
		students.DELETE("/:id", s.requireWrite(), s.handleDeleteStudent)
		students.POST("/import-csv", s.requireWrite(), s.handleImportCSV)
		students.POST("/bulk-delete", s.requireWrite(), s.handleBulkDelete)
	}

	r.GET("/jobs/:id", s.authenticate(), s.handleJobStatus)

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
