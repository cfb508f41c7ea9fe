package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/examplatform/examplatform/internal/api/http"
	"github.com/examplatform/examplatform/internal/aigen"
	auth "github.com/examplatform/examplatform/internal/auth/middleware"
	"github.com/examplatform/examplatform/internal/authoring"
	"github.com/examplatform/examplatform/internal/config"
	"github.com/examplatform/examplatform/internal/db"
	"github.com/examplatform/examplatform/internal/exam"
	rbac "github.com/examplatform/examplatform/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh, cfg.DBDriver)
	events := exam.NewEventLog(dbh, cfg.SiteID)
	svc := exam.NewService(store, events)

	// --- AI question supplier ---
	gen := aigen.New(aigen.Config{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	})

	mgr := authoring.NewManager(gen, svc, authoring.Options{
		OptionFloor:  cfg.OptionFloor,
		DefaultMarks: cfg.DefaultMarks,
	})

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	r.Post("/auth/register", auth.RegisterHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(svc))
		pr.With(rbac.Require("course:view")).
			Get("/courses", api.ListCoursesHandler(svc))

		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(svc))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(svc))
		pr.With(rbac.Require("exam:publish")).
			Post("/exams/{examID}/publish", api.PublishExamHandler(svc, true))
		pr.With(rbac.Require("exam:publish")).
			Post("/exams/{examID}/unpublish", api.PublishExamHandler(svc, false))

		// Authoring session: one per instructor, mutated by discrete actions.
		pr.Route("/authoring/session", func(ar chi.Router) {
			ar.Use(rbac.Require("authoring:session"))

			ar.Post("/", api.OpenSessionHandler(mgr, svc))
			ar.Get("/", api.GetSessionHandler(mgr))
			ar.Delete("/", api.CloseSessionHandler(mgr))
			ar.Post("/sync", api.SyncSessionHandler(mgr, svc))
			ar.Put("/details", api.UpdateDetailsHandler(mgr))

			ar.Put("/working", api.UpdateWorkingHandler(mgr))
			ar.Post("/working/options", api.AddOptionHandler(mgr))
			ar.Put("/working/options/{optIndex}", api.SetOptionTextHandler(mgr))
			ar.Put("/working/options/{optIndex}/correct", api.SetCorrectOptionHandler(mgr))
			ar.Delete("/working/options/{optIndex}", api.RemoveOptionHandler(mgr))
			ar.Post("/working/commit", api.CommitQuestionHandler(mgr))
			ar.Post("/working/cancel", api.CancelEditHandler(mgr))

			ar.Post("/questions/{index}/load", api.LoadQuestionHandler(mgr))
			ar.Delete("/questions/{index}", api.DeleteQuestionHandler(mgr))

			ar.Post("/generate", api.GenerateHandler(mgr))
			ar.Post("/queue/advance", api.AdvanceHandler(mgr))
			ar.Post("/save", api.SaveHandler(mgr))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, model=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.AIModel)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
