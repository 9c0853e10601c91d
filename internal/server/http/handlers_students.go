package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gradekeeper/internal/server/importer"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

type createStudentRequest struct {
	LastName  string  `json:"last_name" binding:"required"`
	FirstName string  `json:"first_name" binding:"required"`
	Faculty   string  `json:"faculty" binding:"required"`
	Course    string  `json:"course" binding:"required"`
	Grade     float64 `json:"grade"`
}

type importRequest struct {
	Source string `json:"source" binding:"required"`
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

type jobAcceptedResponse struct {
	JobID string `json:"job_id"`
}

func studentIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "id must be an integer")
		return 0, false
	}
	return id, true
}

func (s *Server) handleListStudents(c *gin.Context) {
	list, err := s.students.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []*models.Student{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetStudent(c *gin.Context) {
	id, ok := studentIDParam(c)
	if !ok {
		return
	}
	student, err := s.students.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

func (s *Server) handleCreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "last_name, first_name, faculty and course are required")
		return
	}

	created, err := s.students.Create(c.Request.Context(), &models.Student{
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Faculty:   req.Faculty,
		Course:    req.Course,
		Grade:     req.Grade,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateStudent(c *gin.Context) {
	id, ok := studentIDParam(c)
	if !ok {
		return
	}

	var patch models.StudentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updated, err := s.students.Update(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteStudent(c *gin.Context) {
	id, ok := studentIDParam(c)
	if !ok {
		return
	}
	if err := s.students.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleImportCSV accepts a source (local path or s3://bucket/key), queues a
// background import, and immediately returns the job ID.
func (s *Server) handleImportCSV(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "source is required")
		return
	}

	jobID, err := s.jobs.Submit("import-csv", func(ctx context.Context) (string, error) {
		rc, err := s.fetcher.Fetch(ctx, req.Source)
		if err != nil {
			return "", err
		}
		defer rc.Close()

		records, skipped, err := importer.Parse(rc)
		if err != nil {
			return "", err
		}

		imported, err := s.students.ImportStudents(ctx, records)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("imported %d records, skipped %d rows", imported, skipped), nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, jobAcceptedResponse{JobID: jobID})
}

// handleBulkDelete queues a background delete of the given IDs and returns
// the job ID.
func (s *Server) handleBulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "ids are required")
		return
	}

	jobID, err := s.jobs.Submit("bulk-delete", func(ctx context.Context) (string, error) {
		n, err := s.students.BulkDelete(ctx, req.IDs)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("deleted %d records", n), nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, jobAcceptedResponse{JobID: jobID})
}

func (s *Server) handleJobStatus(c *gin.Context) {
	job, err := s.jobs.Status(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
