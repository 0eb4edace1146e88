package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/config"
	"github.com/lectoria/lectoria-api/internal/dto"
	"github.com/lectoria/lectoria-api/internal/handler"
	"github.com/lectoria/lectoria-api/internal/middleware"
	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
	"github.com/lectoria/lectoria-api/internal/router"
	"github.com/lectoria/lectoria-api/internal/service"
)

const (
	adminID        = uint(9001)
	firstTeacherID = uint(101)
	otherTeacherID = uint(102)
)

func setupAuthzApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Actor{}, &models.Course{}, &models.CourseAssignment{}, &models.AuditRecord{}))

	actors := []models.Actor{
		{ID: adminID, Name: "Root", Email: "root@example.test", Role: models.RoleAdmin, RoleLevel: 5},
		{ID: firstTeacherID, Name: "Mira", Email: "mira@example.test", Role: models.RoleTeacher, RoleLevel: 2},
		{ID: otherTeacherID, Name: "Theo", Email: "theo@example.test", Role: models.RoleTeacher, RoleLevel: 2},
	}
	for _, actor := range actors {
		require.NoError(t, db.Create(&actor).Error)
	}

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	actorRepo := repository.NewActorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	auditRepo := repository.NewAuditRecordRepository(db)

	directory := service.NewDirectoryService(actorRepo, nil, 0, logger)
	auditService := service.NewAuditService(auditRepo, nil, "", logger)
	permissionService := service.NewPermissionService(directory, assignmentRepo, logger)
	courseService := service.NewCourseService(courseRepo, permissionService, directory, service.NewContentFieldGuard(), auditService, validate, logger)
	assignmentService := service.NewCourseAssignmentService(assignmentRepo, courseRepo, permissionService, directory, auditService, validate, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Lectoria Test", AdminRateLimit: 1000, AdminRateWindow: time.Minute}, router.Dependencies{
		AuthzHandler:      handler.NewAuthzHandler(permissionService, assignmentService, validate, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		AuditHandler:      handler.NewAuditHandler(auditService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			switch c.Get("X-Test-Actor") {
			case "admin":
				c.Locals("user_id", adminID)
				c.Locals("user_role", models.RoleAdmin)
				c.Locals("user_role_level", 5)
			case "teacher":
				c.Locals("user_id", firstTeacherID)
				c.Locals("user_role", models.RoleTeacher)
				c.Locals("user_role_level", 2)
			}
			return c.Next()
		},
	})

	return app, db
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, actor string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if actor != "" {
		req.Header.Set("X-Test-Actor", actor)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var parsed envelope
	if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func decodeData(t *testing.T, body envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body.Data, out))
}

func TestCourseLifecycleEndToEnd(t *testing.T) {
	app, db := setupAuthzApp(t)

	// Admin creates a course; requested status is ignored.
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/admin/courses", "admin", fiber.Map{
		"title":  "Discrete Mathematics",
		"price":  79,
		"status": "published",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var course dto.CourseResponse
	decodeData(t, body, &course)
	require.Equal(t, "draft", course.Status)
	require.Equal(t, adminID, course.CreatedBy)
	require.Equal(t, "super_admin", course.CreatedByRole)

	// Teachers cannot reach the admin surface at all.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/courses", "teacher", fiber.Map{"title": "Nope"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin assigns the first teacher as primary.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/admin/assignments", "admin", fiber.Map{
		"course_id":          course.ID,
		"teacher_id":         firstTeacherID,
		"is_primary_teacher": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var primary dto.AssignmentResponse
	decodeData(t, body, &primary)
	require.True(t, primary.IsPrimaryTeacher)
	require.True(t, primary.CanManageContent)
	require.True(t, primary.CanGrade)
	require.True(t, primary.CanCommunicate)

	// A second assignment for the same pair conflicts.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/assignments", "admin", fiber.Map{
		"course_id":  course.ID,
		"teacher_id": firstTeacherID,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Second teacher joins with grading only.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/admin/assignments", "admin", fiber.Map{
		"course_id":  course.ID,
		"teacher_id": otherTeacherID,
		"can_grade":  true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var secondary dto.AssignmentResponse
	decodeData(t, body, &secondary)

	// Promoting the second teacher demotes the first.
	resp, body = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/admin/assignments/%d", secondary.ID), "admin", fiber.Map{
		"is_primary_teacher": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var promoted dto.AssignmentResponse
	decodeData(t, body, &promoted)
	require.True(t, promoted.IsPrimaryTeacher)
	require.True(t, promoted.CanManageContent)

	var demoted models.CourseAssignment
	require.NoError(t, db.First(&demoted, primary.ID).Error)
	require.False(t, demoted.IsPrimaryTeacher)
	require.True(t, demoted.CanManageContent, "demotion keeps the remaining flags")

	// The demoted teacher still cannot publish, with or without the primary flag.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/authz/evaluate", "teacher", fiber.Map{
		"action":    "course.publish",
		"actor_id":  firstTeacherID,
		"course_id": course.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decision dto.EvaluateResponse
	decodeData(t, body, &decision)
	require.False(t, decision.Allowed)
	require.Equal(t, "requires admin privileges", decision.Reason)

	// But content management still works through the surviving flag.
	resp, body = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/courses/%d/content", course.ID), "teacher", fiber.Map{
		"description": "Sets, logic, proofs <script>pwn()</script>",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated dto.CourseResponse
	decodeData(t, body, &updated)
	require.Equal(t, "Sets, logic, proofs", updated.Description)

	// Touching metadata as a teacher rejects the whole update.
	resp, _ = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/courses/%d/content", course.ID), "teacher", fiber.Map{
		"description": "new",
		"price":       0,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Admin publishes, then deletes; assignments go with the course.
	resp, body = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/admin/courses/%d/publish", course.ID), "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, body, &updated)
	require.Equal(t, "published", updated.Status)
	require.NotNil(t, updated.PublishedAt)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/admin/courses/%d", course.ID), "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var remaining int64
	require.NoError(t, db.Model(&models.CourseAssignment{}).Where("course_id = ?", course.ID).Count(&remaining).Error)
	require.Zero(t, remaining)

	// The audit trail recorded the whole story.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/admin/audit?page_size=50", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []dto.AuditRecordResponse
	decodeData(t, body, &records)

	actions := make(map[string]int, len(records))
	for _, record := range records {
		actions[record.Action]++
	}
	require.GreaterOrEqual(t, actions["course_created"], 1)
	require.GreaterOrEqual(t, actions["assignment_created"], 2)
	require.GreaterOrEqual(t, actions["assignment_updated"], 1)
	require.GreaterOrEqual(t, actions["course_content_updated"], 1)
	require.GreaterOrEqual(t, actions["metadata_update_rejected"], 1)
	require.GreaterOrEqual(t, actions["course_published"], 1)
	require.GreaterOrEqual(t, actions["course_deleted"], 1)
}
