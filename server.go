package main

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/payload"
	"github.com/chazu/blockview/pkg/selection"
)

func runAPIServer(app *App, port string) error {
	r := gin.Default()
	setupRouter(r, app)
	log.Printf("Preview server listening on %s", port)
	return r.Run(port)
}

// setupRouter registers the preview API.
func setupRouter(r *gin.Engine, app *App) {
	api := r.Group("/api")

	api.GET("/scene", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Scene())
	})
	api.GET("/validation", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Validate())
	})
	api.POST("/buildings", postBuildings(app))
	api.POST("/filter", postFilter(app))
	api.POST("/filter-result", postFilterResult(app))
	api.POST("/reset", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"reset": app.ResetView(), "canResetView": app.CanResetView()})
	})

	api.POST("/pointer", postPointer(app))
	api.GET("/pick", getPick(app))
	api.GET("/selection", getSelection(app))
	api.POST("/selection", postSelection(app))
	api.DELETE("/selection", func(c *gin.Context) {
		app.ClearSelection()
		c.Status(http.StatusNoContent)
	})

	api.POST("/camera", postCamera(app))
	api.POST("/viewport", postViewport(app))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// postBuildings replaces the visible set. Query flags as_base and
// keep_selection map to ApplyOptions.
func postBuildings(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			badRequest(c, err)
			return
		}
		p, err := payload.Decode(body)
		if err != nil {
			badRequest(c, err)
			return
		}
		opts := ApplyOptions{
			AsBase:        c.Query("as_base") == "true",
			KeepSelection: c.Query("keep_selection") == "true",
		}
		var stats any
		if opts.AsBase && !opts.KeepSelection {
			stats = app.LoadBase(p)
		} else {
			stats = app.ApplyPayload(p, opts)
		}
		c.JSON(http.StatusOK, stats)
	}
}

func postFilter(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Filters []payload.Filter `json:"filters"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, app.Filter(req.Filters))
	}
}

func postFilterResult(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			badRequest(c, err)
			return
		}
		r, err := payload.DecodeFilterResult(body)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, app.ApplyFilterResult(r))
	}
}

type pointerRequest struct {
	Kind    string  `json:"kind" binding:"required,oneof=down move leave"`
	Pointer int     `json:"pointer"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type effectResponse struct {
	Selected   bool          `json:"selected"`
	Cleared    bool          `json:"cleared"`
	Changed    bool          `json:"changed"`
	Background bool          `json:"background"`
	Consumed   bool          `json:"consumed"`
	HoverOn    footprint.Key `json:"hoverOn,omitempty"`
	HoverOff   footprint.Key `json:"hoverOff,omitempty"`
}

func toEffectResponse(e selection.Effect) effectResponse {
	return effectResponse{
		Selected:   e.Selected,
		Cleared:    e.Cleared,
		Changed:    e.Changed,
		Background: e.Background,
		Consumed:   e.Consumed,
		HoverOn:    e.HoverOn,
		HoverOff:   e.HoverOff,
	}
}

func postPointer(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pointerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		var (
			eff selection.Effect
			err error
		)
		switch req.Kind {
		case "down":
			eff, err = app.PointerDown(req.Pointer, req.X, req.Y)
		case "move":
			eff, err = app.PointerMove(req.Pointer, req.X, req.Y)
		default:
			eff = app.PointerLeave(req.Pointer)
		}
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, toEffectResponse(eff))
	}
}

func getPick(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		x, err := strconv.ParseFloat(c.Query("x"), 64)
		if err != nil {
			badRequest(c, err)
			return
		}
		y, err := strconv.ParseFloat(c.Query("y"), 64)
		if err != nil {
			badRequest(c, err)
			return
		}
		key, err := app.Pick(x, y)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": key, "hit": key != ""})
	}
}

func getSelection(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := app.Selected()
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func postSelection(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Key string `json:"key" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		app.Select(footprint.Key(req.Key))
		b, ok := app.Selected()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "building " + req.Key + " is not visible"})
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func postCamera(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Azimuth float64    `json:"azimuth"`
			Polar   float64    `json:"polar"`
			Pan     [3]float64 `json:"pan"`
			Zoom    float64    `json:"zoom"`
			Steps   int        `json:"steps"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Steps <= 0 {
			req.Steps = 1
		}
		app.Orbit(req.Azimuth, req.Polar, mgl64.Vec3(req.Pan), req.Zoom, req.Steps)
		c.JSON(http.StatusOK, app.Scene().Camera)
	}
}

func postViewport(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Width  int `json:"width" binding:"required,gt=0"`
			Height int `json:"height" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		app.Resize(req.Width, req.Height)
		c.Status(http.StatusNoContent)
	}
}
