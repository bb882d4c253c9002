package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/km-arc/go-ioc/app"
	"github.com/km-arc/go-ioc/apperr"
	"github.com/km-arc/go-ioc/console"
	"github.com/km-arc/go-ioc/container"
	"github.com/km-arc/go-ioc/controller"
	"github.com/km-arc/go-ioc/httpd"
	"github.com/km-arc/go-ioc/intercept"
	"github.com/km-arc/go-ioc/txn"
)

// ── Domain ───────────────────────────────────────────────────────────────────

// Note is the demo persistence model.
type Note struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt time.Time
}

// notesSettings is filled from NOTES_* environment variables.
type notesSettings struct {
	MaxTitleLen int `env:"MAX_TITLE_LEN" default:"120"`
}

func (*notesSettings) EnvPrefix() string { return "NOTES" }

// ── Repository ───────────────────────────────────────────────────────────────

type noteRepository struct {
	db *gorm.DB
}

func newNoteRepository(db *gorm.DB) *noteRepository {
	return &noteRepository{db: db}
}

// txn.DB joins the ambient transaction, so repository calls made inside an
// intercepted operation share the operation's boundary.
func (r *noteRepository) Create(ctx context.Context, n *Note) error {
	return txn.DB(ctx, r.db).Create(n).Error
}

func (r *noteRepository) Find(ctx context.Context, id uint) (*Note, error) {
	var n Note
	err := txn.DB(ctx, r.db).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("note %d not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noteRepository) List(ctx context.Context) ([]Note, error) {
	var notes []Note
	err := txn.DB(ctx, r.db).Order("id").Find(&notes).Error
	return notes, err
}

func (r *noteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := txn.DB(ctx, r.db).Model(&Note{}).Count(&n).Error
	return n, err
}

// ── Controller ───────────────────────────────────────────────────────────────

type noteController struct {
	controller.Base
	repo     *noteRepository
	settings *notesSettings
	pipe     *intercept.Pipeline
}

func newNoteController(repo *noteRepository, settings *notesSettings, mgr txn.Manager, tracer trace.Tracer) *noteController {
	c := &noteController{repo: repo, settings: settings}
	c.pipe = intercept.New("Notes", c,
		intercept.WithTransactions(mgr),
		intercept.WithTracer(tracer),
	)
	return c
}

func (c *noteController) Register(r controller.Registrar) {
	r.AddRoute("notes.index", c.pipe.Wrap("Index", c.index),
		controller.Metadata{Method: "GET", Path: "/notes", Summary: "List notes"})
	r.AddRoute("notes.store", c.pipe.Wrap("Store", c.store),
		controller.Metadata{Method: "POST", Path: "/notes", Summary: "Create a note"})
	r.AddRoute("notes.show", c.pipe.Wrap("Show", c.show),
		controller.Metadata{Method: "GET", Path: "/notes/{id}", Summary: "Show a note"})
	r.AddRoute("notes.seed", c.pipe.Wrap("Seed", c.seed),
		controller.Metadata{Method: "POST", Path: "/notes/seed", Summary: "Seed a welcome note"})
}

func (c *noteController) index(ctx context.Context, _ any) (any, error) {
	return c.repo.List(ctx)
}

func (c *noteController) store(ctx context.Context, in any) (any, error) {
	req := in.(*httpd.Request)

	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := req.Bind(&body); err != nil {
		return nil, apperr.Invalid("malformed note payload").WithCause(err)
	}
	if body.Title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if len(body.Title) > c.settings.MaxTitleLen {
		return nil, apperr.Invalid(fmt.Sprintf("title exceeds %d characters", c.settings.MaxTitleLen))
	}

	n := &Note{Title: body.Title, Body: body.Body}
	if err := c.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return httpd.CreatedResult(n), nil
}

func (c *noteController) show(ctx context.Context, in any) (any, error) {
	var id uint64
	switch req := in.(type) {
	case *httpd.Request:
		id, _ = strconv.ParseUint(req.Param("id"), 10, 64)
	case []string: // console: app notes:show <id>
		if len(req) > 0 {
			id, _ = strconv.ParseUint(req[0], 10, 64)
		}
	}
	return c.repo.Find(ctx, uint(id))
}

// seed creates the welcome note on an empty table. Idempotent, so it is safe
// to dispatch on every startup.
func (c *noteController) seed(ctx context.Context, _ any) (any, error) {
	count, err := c.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return map[string]any{"seeded": false, "notes": count}, nil
	}
	welcome := &Note{Title: "Welcome", Body: "This is your first note."}
	if err := c.repo.Create(ctx, welcome); err != nil {
		return nil, err
	}
	return map[string]any{"seeded": true}, nil
}

func (c *noteController) HandleException(ctx context.Context, err error) (any, error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return httpd.ErrorResult(http.StatusNotFound, apperr.Message(err)), nil
	case apperr.KindInvalid:
		return httpd.ErrorResult(http.StatusUnprocessableEntity, apperr.Message(err)), nil
	}
	return c.Base.HandleException(ctx, err)
}

// ── Bootstrap ────────────────────────────────────────────────────────────────

func describeServices(a *app.Application) {
	if err := a.RegisterSettings(&notesSettings{}); err != nil {
		panic(err)
	}

	a.MustDescribe(container.Descriptor{
		Key: "notes.repository",
		Deps: []container.Dependency{
			{Name: "db", Key: "db"},
		},
		Build: func(c *container.Container, args []any) (any, error) {
			return newNoteRepository(args[0].(*gorm.DB)), nil
		},
	})

	a.MustDescribe(container.Descriptor{
		Key: "notes.controller",
		Deps: []container.Dependency{
			{Name: "repo", Key: "notes.repository"},
			{Name: "settings", Key: container.TypeKey(&notesSettings{})},
			{Name: "txns", Key: "txn.manager"},
			{Name: "tracer", Key: "tracer"},
		},
		Build: func(c *container.Container, args []any) (any, error) {
			return newNoteController(
				args[0].(*noteRepository),
				args[1].(*notesSettings),
				args[2].(txn.Manager),
				args[3].(trace.Tracer),
			), nil
		},
	})
}

func main() {
	application := app.New() // loads .env automatically

	if err := application.Boot(); err != nil {
		fmt.Fprintln(os.Stderr, "boot:", err)
		os.Exit(1)
	}
	defer application.Shutdown(context.Background())

	if err := application.DB().AutoMigrate(&Note{}); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	describeServices(application)

	ctrl := container.MustMake[controller.Controller](application.Container, "notes.controller")

	// console mode: any argument routes through the CLI kernel
	if len(os.Args) > 1 {
		kernel := console.NewKernel("app")
		ctrl.Register(kernel)
		if err := kernel.Execute(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := application.MountHTTP("notes.controller"); err != nil {
		fmt.Fprintln(os.Stderr, "mount:", err)
		os.Exit(1)
	}

	// the same operations double as queue tasks; seed in the background
	worker := application.Queue()
	ctrl.Register(worker)
	if err := worker.Dispatch(context.Background(), "notes.seed", nil); err != nil {
		application.Logger().Warn("seed dispatch failed", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}
