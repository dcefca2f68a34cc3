// Package api exposes the takeout ingestion surface over HTTP: archive
// upload (direct or from Drive), run-status polling and staged-file removal.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	shared "github.com/roamly/server/pkg"
	"github.com/roamly/server/pkg/bootstrap"
	"github.com/roamly/server/pkg/infrastructure/auth"
	"github.com/roamly/server/pkg/infrastructure/drive"
	"github.com/roamly/server/pkg/infrastructure/pubsub"
	"github.com/roamly/server/pkg/predict"
	"github.com/roamly/server/pkg/types"
)

// maxArchiveBytes caps direct uploads. Takeout location archives are small;
// anything larger is almost certainly the full multi-product export.
const maxArchiveBytes = 256 << 20

// TokenVerifier validates a bearer token and returns the caller.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (auth.Identity, error)
}

// DriveFetcher pulls an archive out of Google Drive with the caller's
// short-lived access token. Injectable for tests.
type DriveFetcher func(ctx context.Context, accessToken, fileID string) ([]byte, string, error)

type Server struct {
	Service  *bootstrap.Service
	Verifier TokenVerifier
	Logger   *slog.Logger
	Fetch    DriveFetcher
}

func NewServer(svc *bootstrap.Service, verifier TokenVerifier, logger *slog.Logger) *Server {
	return &Server{
		Service:  svc,
		Verifier: verifier,
		Logger:   logger,
		Fetch: func(ctx context.Context, accessToken, fileID string) ([]byte, string, error) {
			return drive.NewClient(ctx, accessToken).FetchFile(ctx, fileID)
		},
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/takeout", s.handleUpload)
		r.Get("/takeout/runs/{runID}", s.handleRunStatus)
		r.Delete("/takeout/files/{fileName}", s.handleRemoveFile)
	})

	return r
}

type contextKey string

const identityKey contextKey = "identity"

func identityFrom(ctx context.Context) auth.Identity {
	identity, _ := ctx.Value(identityKey).(auth.Identity)
	return identity
}

// requireAuth verifies the Authorization bearer token and stashes the caller
// identity on the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		identity, err := s.Verifier.Verify(r.Context(), token)
		if err != nil {
			s.Logger.Warn("Token verification failed", "error", err)
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// driveUploadRequest asks the API to pull the archive from Google Drive
// instead of receiving it inline.
type driveUploadRequest struct {
	DriveFileID string `json:"drive_file_id"`
	AccessToken string `json:"access_token"`
}

type uploadResponse struct {
	RunID    string                         `json:"run_id"`
	Statuses map[string]types.SectionStatus `json:"statuses"`
}

// handleUpload accepts an archive (multipart field "archive", or a JSON body
// naming a Drive file), stages it in GCS, opens an ingestion run and hands
// off to the processor via Pub/Sub. The response returns immediately; clients
// poll the run for progress.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	archive, err := s.readArchive(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(archive) == 0 {
		s.writeError(w, http.StatusBadRequest, "empty archive")
		return
	}

	runID := uuid.NewString()
	object := fmt.Sprintf("takeout/%s/%s.zip", identity.UserID, runID)
	bucket := s.Service.Config.GCSArchiveBucket

	if err := s.Service.Store.Write(ctx, bucket, object, archive); err != nil {
		s.Logger.Error("Failed to stage archive", "user_id", identity.UserID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store archive")
		return
	}

	now := time.Now()
	run := &types.IngestionRun{
		RunID:         runID,
		UserID:        identity.UserID,
		UserName:      identity.Name,
		ArchiveBucket: bucket,
		ArchiveObject: object,
		Statuses:      neutralStatuses(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Service.DB.SetIngestionRun(ctx, identity.UserID, run); err != nil {
		s.Logger.Error("Failed to record ingestion run", "run_id", runID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to record run")
		return
	}

	e, err := pubsub.NewCloudEvent(pubsub.EventSourceAPI, pubsub.EventTypeTakeoutUploaded,
		types.TakeoutUploadedEvent{
			UserID:   identity.UserID,
			UserName: identity.Name,
			RunID:    runID,
			Bucket:   bucket,
			Object:   object,
		})
	if err != nil {
		s.Logger.Error("Failed to build takeout.uploaded event", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to enqueue run")
		return
	}
	if _, err := s.Service.Pub.PublishCloudEvent(ctx, shared.TopicTakeoutUploaded, e); err != nil {
		s.Logger.Error("Failed to publish takeout.uploaded event", "run_id", runID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to enqueue run")
		return
	}

	s.Logger.Info("Accepted takeout archive",
		"user_id", identity.UserID, "run_id", runID, "bytes", len(archive))
	s.writeJSON(w, http.StatusAccepted, uploadResponse{RunID: runID, Statuses: run.Statuses})
}

// readArchive extracts archive bytes from either a multipart form upload or
// a Drive fetch request.
func (s *Server) readArchive(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxArchiveBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("archive")
		if err != nil {
			return nil, fmt.Errorf("missing archive file field: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxArchiveBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}
		if len(data) > maxArchiveBytes {
			return nil, fmt.Errorf("archive exceeds %d bytes", maxArchiveBytes)
		}
		return data, nil
	}

	var req driveUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	if req.DriveFileID == "" || req.AccessToken == "" {
		return nil, fmt.Errorf("drive_file_id and access_token are required")
	}
	data, _, err := s.Fetch(r.Context(), req.AccessToken, req.DriveFileID)
	if err != nil {
		return nil, fmt.Errorf("fetch drive file: %w", err)
	}
	return data, nil
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	runID := chi.URLParam(r, "runID")

	run, err := s.Service.DB.GetIngestionRun(r.Context(), identity.UserID, runID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleRemoveFile deletes a staged model file ahead of its automatic
// expiry. Used by clients that want the payload gone immediately.
func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	if s.Service.Files == nil {
		s.writeError(w, http.StatusServiceUnavailable, "file store is not configured")
		return
	}
	fileName := chi.URLParam(r, "fileName")
	if err := s.Service.Files.Delete(r.Context(), "files/"+fileName); err != nil {
		s.Logger.Warn("Failed to delete staged file", "file", fileName, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func neutralStatuses() map[string]types.SectionStatus {
	statuses := make(map[string]types.SectionStatus, len(predict.Sections))
	for _, section := range predict.Sections {
		statuses[section.String()] = types.SectionNeutral
	}
	return statuses
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
