package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paperapi/docs"
	"paperapi/internal/http/middleware"
	"paperapi/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB          *sql.DB
	Catalog     service.CatalogService
	Submissions service.SubmissionService
	Admin       service.AdminService
	Accounts    service.AccountService
	Verifier    middleware.TokenVerifier
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer    prometheus.Gatherer
	CORSOrigins string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
		AllowMethods: "POST, GET, OPTIONS, PUT, DELETE, PATCH",
		MaxAge:       86400,
	}))

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	requireUser := middleware.RequireUser(d.Verifier, d.Accounts)
	optionalUser := middleware.OptionalUser(d.Verifier, d.Accounts)
	requireAdmin := middleware.RequireAdmin()

	api := app.Group("/api")

	api.Post("/auth/signup", Signup(d.Accounts))
	api.Get("/me", requireUser, Me(d.Accounts))

	api.Get("/categories", ListCategories(d.Catalog))
	api.Get("/categories/:slug", GetCategory(d.Catalog))
	api.Get("/stats", PublicStats(d.Catalog))

	api.Get("/papers", ListPapers(d.Catalog))
	api.Post("/papers", requireUser, UploadPaperForm(d.Submissions))
	api.Post("/papers/upload", requireUser, UploadPaperJSON(d.Submissions))
	api.Get("/papers/:id", GetPaper(d.Catalog))
	api.Post("/papers/:id/views", optionalUser, RecordView(d.Catalog))
	api.Get("/papers/:id/summary.txt", SummaryText(d.Catalog))
	api.Get("/papers/:id/summary.pdf", SummaryPDF(d.Catalog))
	api.Get("/papers/:id/citation.bib", Citation(d.Catalog))

	api.Post("/summaries", requireUser, ProcessSummary(d.Submissions))

	admin := api.Group("/admin", requireUser, requireAdmin)
	admin.Post("/actions", AdminAction(d.Admin))
	admin.Get("/stats", AdminStats(d.Admin))
	admin.Get("/submissions", ListSubmissions(d.Admin))
	admin.Post("/submissions/:id/approve", ApproveSubmission(d.Admin))
	admin.Post("/submissions/:id/reject", RejectSubmission(d.Admin))
	admin.Patch("/papers/:id", UpdatePaper(d.Admin))
	admin.Delete("/papers/:id", DeletePaper(d.Admin))
	admin.Post("/papers/:id/summarize", ResummarizePaper(d.Admin))
	admin.Post("/categories", CreateCategory(d.Admin))
}
