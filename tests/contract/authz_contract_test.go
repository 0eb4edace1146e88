package contract_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lectoria/lectoria-api/internal/handler"
	"github.com/lectoria/lectoria-api/internal/models"
	"github.com/lectoria/lectoria-api/internal/repository"
	"github.com/lectoria/lectoria-api/internal/service"
)

type fixedDirectory struct {
	actors map[uint]models.Actor
}

func (d fixedDirectory) GetActor(_ context.Context, id uint) (models.Actor, error) {
	actor, ok := d.actors[id]
	if !ok {
		return models.Actor{}, service.ErrActorNotFound
	}
	return actor, nil
}

func setupAuthzContractApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:contract_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CourseAssignment{}))

	require.NoError(t, db.Create(&models.CourseAssignment{CourseID: 2, TeacherID: 7, CanGrade: true}).Error)

	directory := fixedDirectory{actors: map[uint]models.Actor{
		1: {ID: 1, Role: models.RoleAdmin, RoleLevel: 5},
		7: {ID: 7, Role: models.RoleTeacher, RoleLevel: 2},
	}}

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	permissions := service.NewPermissionService(directory, assignmentRepo, logger)
	courses := repository.NewCourseRepository(db)
	audit := service.NewAuditService(repository.NewAuditRecordRepository(db), nil, "", logger)
	assignments := service.NewCourseAssignmentService(assignmentRepo, courses, permissions, directory, audit, validate, logger)

	authzHandler := handler.NewAuthzHandler(permissions, assignments, validate, logger)

	app := fiber.New()
	authzHandler.Register(app.Group("/api/v1/authz"))
	return app
}

func TestAuthzEvaluateContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "authz_evaluate.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	app := setupAuthzContractApp(t)

	requests := []string{
		`{"action":"course.create","actor_id":1}`,
		`{"action":"course.publish","actor_id":7,"course_id":2}`,
		`{"action":"course.grade","actor_id":7,"course_id":2}`,
		`{"action":"course.manage_content","actor_id":7,"course_id":2}`,
		`{"action":"course.grade","actor_id":7,"course_id":3}`,
	}

	for _, body := range requests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/authz/evaluate", strings.NewReader(body))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		var payload interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		require.NoError(t, schema.Validate(payload), body)
	}
}
